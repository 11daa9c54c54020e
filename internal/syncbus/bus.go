// Package syncbus propagates "something changed" hints between open
// client sessions and server instances. Signals are fire-and-forget:
// consumers re-fetch authoritative state from the store, they never
// treat a signal as the new state itself. A missed signal is
// self-healing because clients poll and refresh on focus.
package syncbus

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tahsinn/campus-found/backend/internal/models"
)

// Transport is one propagation layer. The in-process layer, the redis
// pub/sub layer and the durable change feed are interchangeable
// implementations of the same notify-of-possible-change contract.
type Transport interface {
	Publish(ctx context.Context, signal models.SyncSignal) error
	Subscribe(ctx context.Context) (<-chan models.SyncSignal, error)
}

// Bus fans signals out to in-process subscribers and to every
// configured transport, and fans transport-delivered signals back in.
// Signals are de-duplicated by ID so a signal travelling multiple
// layers is delivered to a subscriber once.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan models.SyncSignal
	nextSubID   int

	transports []Transport

	seenMu sync.Mutex
	seen   map[string]time.Time
}

// NewBus creates a bus over the given transports. A bus with no
// transports still serves same-process subscribers.
func NewBus(transports ...Transport) *Bus {
	return &Bus{
		subscribers: make(map[int]chan models.SyncSignal),
		transports:  transports,
		seen:        make(map[string]time.Time),
	}
}

// Start subscribes to every transport and fans inbound signals out to
// local subscribers until ctx is cancelled.
func (b *Bus) Start(ctx context.Context) error {
	for _, t := range b.transports {
		ch, err := t.Subscribe(ctx)
		if err != nil {
			return err
		}
		go func(ch <-chan models.SyncSignal) {
			for signal := range ch {
				if b.markSeen(signal.ID) {
					continue
				}
				b.fanOut(signal)
			}
		}(ch)
	}
	return nil
}

// Publish builds a signal for the mutation and delivers it everywhere.
// Transport failures are logged and swallowed: the mutation already
// committed, and polling will reconcile any session the signal missed.
func (b *Bus) Publish(ctx context.Context, entity string, entityID uint, changeType models.ChangeType) {
	signal := models.SyncSignal{
		ID:       uuid.NewString(),
		Entity:   entity,
		EntityID: entityID,
		Type:     changeType,
		At:       time.Now().UTC(),
	}
	b.markSeen(signal.ID)
	b.fanOut(signal)
	for _, t := range b.transports {
		if err := t.Publish(ctx, signal); err != nil {
			log.Printf("syncbus: publish %s/%s: %v", signal.Entity, signal.Type, err)
		}
	}
}

// Subscribe registers an in-process listener. The returned cancel
// function must be called when the listener goes away.
func (b *Bus) Subscribe() (<-chan models.SyncSignal, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSubID
	b.nextSubID++
	ch := make(chan models.SyncSignal, 16)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(c)
		}
	}
	return ch, cancel
}

func (b *Bus) fanOut(signal models.SyncSignal) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- signal:
		default:
			// Subscriber is not keeping up; it will reconcile by polling.
		}
	}
}

// markSeen records the signal ID and reports whether it was already
// known. Old entries are pruned so the set stays bounded.
func (b *Bus) markSeen(id string) bool {
	b.seenMu.Lock()
	defer b.seenMu.Unlock()

	if _, ok := b.seen[id]; ok {
		return true
	}
	now := time.Now()
	b.seen[id] = now
	if len(b.seen) > 4096 {
		cutoff := now.Add(-time.Minute)
		for k, at := range b.seen {
			if at.Before(cutoff) {
				delete(b.seen, k)
			}
		}
	}
	return false
}
