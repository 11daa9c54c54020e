package repositories

import (
	"context"
	"log"
	"time"

	"github.com/tahsinn/campus-found/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SyncEventRepository is the durable change feed behind the sync bus.
// Every successful mutation appends one document; other server
// instances and reconnecting clients tail or replay the feed. The feed
// carries hints only, never authoritative state.
type SyncEventRepository interface {
	Append(ctx context.Context, signal models.SyncSignal) error
	Since(ctx context.Context, after time.Time) ([]models.SyncSignal, error)
	Watch(ctx context.Context) (<-chan models.SyncSignal, error)
}

// MongoSyncEventRepository implements SyncEventRepository for MongoDB
type MongoSyncEventRepository struct {
	collection *mongo.Collection
}

// NewMongoSyncEventRepository creates a new MongoSyncEventRepository
func NewMongoSyncEventRepository(db *mongo.Database) *MongoSyncEventRepository {
	return &MongoSyncEventRepository{collection: db.Collection("sync_events")}
}

// Append writes one signal document
func (r *MongoSyncEventRepository) Append(ctx context.Context, signal models.SyncSignal) error {
	_, err := r.collection.InsertOne(ctx, signal)
	return err
}

// Since replays signals newer than the given instant, oldest first.
// Used by polling clients to self-heal after a missed push.
func (r *MongoSyncEventRepository) Since(ctx context.Context, after time.Time) ([]models.SyncSignal, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "at", Value: 1}}).SetLimit(500)
	cursor, err := r.collection.Find(ctx, bson.M{"at": bson.M{"$gt": after}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var signals []models.SyncSignal
	if err = cursor.All(ctx, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

// Watch tails inserts on the feed via a change stream and delivers each
// new signal on the returned channel until ctx is cancelled.
func (r *MongoSyncEventRepository) Watch(ctx context.Context) (<-chan models.SyncSignal, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"operationType": "insert"}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	out := make(chan models.SyncSignal)
	go func() {
		defer close(out)
		defer stream.Close(ctx)
		for stream.Next(ctx) {
			var event struct {
				FullDocument models.SyncSignal `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Printf("sync feed: decode change event: %v", err)
				continue
			}
			select {
			case out <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("sync feed: change stream closed: %v", err)
		}
	}()
	return out, nil
}
