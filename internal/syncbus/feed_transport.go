package syncbus

import (
	"context"

	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
)

// FeedTransport adapts the durable change feed to the Transport
// contract. It is the propagation path of record: redis and in-process
// delivery are faster but lossy, the feed can be replayed.
type FeedTransport struct {
	feed repositories.SyncEventRepository
}

// NewFeedTransport creates a FeedTransport over the event repository
func NewFeedTransport(feed repositories.SyncEventRepository) *FeedTransport {
	return &FeedTransport{feed: feed}
}

// Publish appends the signal to the feed
func (t *FeedTransport) Publish(ctx context.Context, signal models.SyncSignal) error {
	return t.feed.Append(ctx, signal)
}

// Subscribe tails the feed's change stream
func (t *FeedTransport) Subscribe(ctx context.Context) (<-chan models.SyncSignal, error) {
	return t.feed.Watch(ctx)
}
