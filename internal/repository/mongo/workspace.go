package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nexora-hq/nexora/internal/domain"
)

// WorkspaceRepository handles workspace data access
type WorkspaceRepository struct {
	coll *mongo.Collection
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{coll: db.db.Collection(collWorkspaces)}
}

// Create inserts a new workspace
func (r *WorkspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	now := time.Now()
	workspace.CreatedAt = now
	workspace.UpdatedAt = now
	if workspace.ID.IsZero() {
		workspace.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, workspace); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

// GetByID retrieves a workspace by ID; returns (nil, nil) when missing
func (r *WorkspaceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workspace, error) {
	var workspace domain.Workspace
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&workspace)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &workspace, nil
}

// Update replaces a workspace document
func (r *WorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	workspace.UpdatedAt = time.Now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": workspace.ID}, workspace)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("workspace %s not found", workspace.ID.Hex())
	}
	return nil
}
