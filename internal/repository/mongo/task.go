package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nexora-hq/nexora/internal/domain"
)

// TaskRepository handles task data access. All filters are produced by the
// policy package; this layer never widens them.
type TaskRepository struct {
	coll *mongo.Collection
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{coll: db.db.Collection(collTasks)}
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindOne retrieves a single task; returns (nil, nil) when nothing matches
func (r *TaskRepository) FindOne(ctx context.Context, filter bson.M) (*domain.Task, error) {
	var task domain.Task
	err := r.coll.FindOne(ctx, filter).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// Find lists tasks matching the filter, newest first
func (r *TaskRepository) Find(ctx context.Context, filter bson.M) ([]domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// Update replaces a task document
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("task %s not found", task.ID.Hex())
	}
	return nil
}

// DeleteOne removes the task matching the filter; reports whether a row matched
func (r *TaskRepository) DeleteOne(ctx context.Context, filter bson.M) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// Count counts tasks matching the filter
func (r *TaskRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// FindOverdueOpen lists open tasks whose due date has passed, for the
// reminder sweep.
func (r *TaskRepository) FindOverdueOpen(ctx context.Context, now time.Time) ([]domain.Task, error) {
	return r.Find(ctx, bson.M{
		"status":  bson.M{"$in": bson.A{domain.TaskStatusPending, domain.TaskStatusInProgress}},
		"dueDate": bson.M{"$lt": now},
	})
}
