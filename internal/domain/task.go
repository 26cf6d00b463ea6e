package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task status values. done is reachable only through the close operation.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// TaskSourceInvoice marks follow-up tasks auto-created from an overdue invoice.
const TaskSourceInvoice = "invoice"

// AIInsights holds the completion-service analysis attached to a task.
type AIInsights struct {
	SuggestedPriority string `bson:"suggestedPriority,omitempty" json:"suggested_priority,omitempty"`
	EstimatedTime     string `bson:"estimatedTime,omitempty" json:"estimated_time,omitempty"`
	Note              string `bson:"note,omitempty" json:"note,omitempty"`
}

// ReminderEntry is one send recorded in a task's append-only reminder log.
type ReminderEntry struct {
	SentAt time.Time `bson:"sentAt" json:"sent_at"`
}

// Task represents a unit of work scoped to a workspace
type Task struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title        string              `bson:"title" json:"title"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Status       string              `bson:"status" json:"status"`
	Priority     string              `bson:"priority" json:"priority"`
	DueDate      *time.Time          `bson:"dueDate,omitempty" json:"due_date,omitempty"`
	AssignedTo   primitive.ObjectID  `bson:"assignedTo" json:"assigned_to"`
	CreatedBy    primitive.ObjectID  `bson:"createdBy" json:"created_by"`
	WorkspaceID  primitive.ObjectID  `bson:"workspace" json:"workspace_id"`
	AIInsights   *AIInsights         `bson:"aiInsights,omitempty" json:"ai_insights,omitempty"`
	Source       string              `bson:"source,omitempty" json:"source,omitempty"`
	SourceID     *primitive.ObjectID `bson:"sourceId,omitempty" json:"source_id,omitempty"`
	ClosedReason string              `bson:"closedReason,omitempty" json:"closed_reason,omitempty"`
	ClosedAt     *time.Time          `bson:"closedAt,omitempty" json:"closed_at,omitempty"`
	ClosedBy     *primitive.ObjectID `bson:"closedBy,omitempty" json:"closed_by,omitempty"`
	ReminderLog  []ReminderEntry     `bson:"reminderLog,omitempty" json:"reminder_log,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updated_at"`
}

// TaskCreate represents admin task creation data
type TaskCreate struct {
	Title       string     `json:"title" validate:"required,max=500"`
	Description string     `json:"description" validate:"max=5000"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  string     `json:"assigned_to" validate:"required"`
}

// TaskUpdate represents a generic task update. Status may move between
// pending and in_progress only; done is rejected here.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=500"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress done"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskClose carries the mandatory close reason
type TaskClose struct {
	Reason string `json:"reason" validate:"required"`
}

// TaskAnalysisInput feeds the completion-service task analysis
type TaskAnalysisInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TaskID      string `json:"task_id,omitempty"`
}

// TaskAnalysis is the analysis result (completion output or fallback)
type TaskAnalysis struct {
	SuggestedPriority string    `json:"suggestedPriority"`
	EstimatedTime     string    `json:"estimatedTime"`
	Note              string    `json:"note"`
	DueDate           time.Time `json:"dueDate"`
}

// TaskStats is the dashboard aggregate over the actor's visible tasks
type TaskStats struct {
	TotalTasks           int64 `json:"total_tasks"`
	PendingTasks         int64 `json:"pending_tasks"`
	InProgressTasks      int64 `json:"in_progress_tasks"`
	CompletedTasks       int64 `json:"completed_tasks"`
	CompletionPercentage int   `json:"completion_percentage"`
}

// TaskRepository defines the interface for task storage
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindOne(ctx context.Context, filter bson.M) (*Task, error)
	Find(ctx context.Context, filter bson.M) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	DeleteOne(ctx context.Context, filter bson.M) (bool, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	FindOverdueOpen(ctx context.Context, now time.Time) ([]Task, error)
}
