package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nexora-hq/nexora/internal/config"
)

// Collection names
const (
	collUsers      = "users"
	collWorkspaces = "workspaces"
	collTasks      = "tasks"
	collInvoices   = "invoices"
	collEmailJobs  = "emailautomations"
	collCounters   = "counters"
)

// DB wraps the Mongo client and database handle
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewDB connects to MongoDB and verifies the connection
func NewDB(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &DB{client: client, db: client.Database(cfg.Database)}, nil
}

// Close disconnects from MongoDB
func (d *DB) Close() error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(context.Background())
}

// Ping verifies the connection is alive
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}
