package syncbus

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/tahsinn/campus-found/backend/internal/models"
)

const syncChannel = "sync:events"

// RedisTransport propagates signals between server instances over
// redis pub/sub. Delivery is at-most-once, which is enough for hints.
type RedisTransport struct {
	client *redis.Client
}

// NewRedisTransport creates a RedisTransport over an existing client
func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

// Publish serializes the signal and publishes it on the sync channel
func (t *RedisTransport) Publish(ctx context.Context, signal models.SyncSignal) error {
	payload, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	return t.client.Publish(ctx, syncChannel, payload).Err()
}

// Subscribe delivers every signal published on the sync channel until
// ctx is cancelled.
func (t *RedisTransport) Subscribe(ctx context.Context) (<-chan models.SyncSignal, error) {
	pubsub := t.client.Subscribe(ctx, syncChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan models.SyncSignal)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var signal models.SyncSignal
				if err := json.Unmarshal([]byte(msg.Payload), &signal); err != nil {
					log.Printf("syncbus: unmarshal redis signal: %v", err)
					continue
				}
				select {
				case out <- signal:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
