package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterRepository yields sequence values via an atomic $inc on a dedicated
// counters document, so concurrent invoice creation cannot observe the same
// value the way a count+1 scheme would.
type CounterRepository struct {
	coll *mongo.Collection
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *DB) *CounterRepository {
	return &CounterRepository{coll: db.db.Collection(collCounters)}
}

// Next atomically increments and returns the named sequence, starting at 1.
func (r *CounterRepository) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", name, err)
	}
	return doc.Seq, nil
}
