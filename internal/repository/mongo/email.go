package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nexora-hq/nexora/internal/domain"
)

// EmailAutomationRepository handles scheduled email job storage
type EmailAutomationRepository struct {
	coll *mongo.Collection
}

// NewEmailAutomationRepository creates a new email automation repository
func NewEmailAutomationRepository(db *DB) *EmailAutomationRepository {
	return &EmailAutomationRepository{coll: db.db.Collection(collEmailJobs)}
}

// Create inserts a new email automation
func (r *EmailAutomationRepository) Create(ctx context.Context, automation *domain.EmailAutomation) error {
	now := time.Now()
	automation.CreatedAt = now
	automation.UpdatedAt = now
	if automation.ID.IsZero() {
		automation.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, automation); err != nil {
		return fmt.Errorf("failed to create email automation: %w", err)
	}
	return nil
}

// ListByWorkspace lists a workspace's automations, newest schedule first
func (r *EmailAutomationRepository) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]domain.EmailAutomation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"workspace": workspaceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list email automations: %w", err)
	}
	defer cursor.Close(ctx)

	var automations []domain.EmailAutomation
	if err := cursor.All(ctx, &automations); err != nil {
		return nil, fmt.Errorf("failed to decode email automations: %w", err)
	}
	return automations, nil
}

// FindDue lists scheduled jobs whose send time has arrived, oldest first
func (r *EmailAutomationRepository) FindDue(ctx context.Context, now time.Time) ([]domain.EmailAutomation, error) {
	filter := bson.M{
		"status":      domain.EmailStatusScheduled,
		"scheduledAt": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due email automations: %w", err)
	}
	defer cursor.Close(ctx)

	var automations []domain.EmailAutomation
	if err := cursor.All(ctx, &automations); err != nil {
		return nil, fmt.Errorf("failed to decode email automations: %w", err)
	}
	return automations, nil
}

// Update replaces an email automation document
func (r *EmailAutomationRepository) Update(ctx context.Context, automation *domain.EmailAutomation) error {
	automation.UpdatedAt = time.Now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": automation.ID}, automation)
	if err != nil {
		return fmt.Errorf("failed to update email automation: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("email automation %s not found", automation.ID.Hex())
	}
	return nil
}
