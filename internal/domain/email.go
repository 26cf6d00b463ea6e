package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Email automation status values. sent and failed are terminal and
// written only by the scheduler.
const (
	EmailStatusScheduled = "scheduled"
	EmailStatusSent      = "sent"
	EmailStatusFailed    = "failed"
)

// Email tones accepted for generation
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneFormal       = "formal"
)

// EmailAutomation is a scheduled AI-generated email job
type EmailAutomation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID   primitive.ObjectID `bson:"workspace" json:"workspace_id"`
	CreatedBy     primitive.ObjectID `bson:"createdBy" json:"created_by"`
	To            string             `bson:"to" json:"to"`
	Subject       string             `bson:"subject" json:"subject"`
	Context       string             `bson:"context,omitempty" json:"context,omitempty"`
	Tone          string             `bson:"tone" json:"tone"`
	ScheduledAt   time.Time          `bson:"scheduledAt" json:"scheduled_at"`
	GeneratedBody string             `bson:"generatedBody,omitempty" json:"generated_body,omitempty"`
	Status        string             `bson:"status" json:"status"`
	SentAt        *time.Time         `bson:"sentAt,omitempty" json:"sent_at,omitempty"`
	Error         string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updated_at"`
}

// EmailAutomationCreate is the client-writable subset of an automation.
// generatedBody, status, sentAt and error are system-owned.
type EmailAutomationCreate struct {
	To          string    `json:"to" validate:"required,email"`
	Subject     string    `json:"subject" validate:"required,max=500"`
	Context     string    `json:"context" validate:"max=5000"`
	Tone        string    `json:"tone" validate:"omitempty,oneof=professional friendly formal"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// EmailAutomationRepository defines the interface for email job storage
type EmailAutomationRepository interface {
	Create(ctx context.Context, automation *EmailAutomation) error
	ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]EmailAutomation, error)
	FindDue(ctx context.Context, now time.Time) ([]EmailAutomation, error)
	Update(ctx context.Context, automation *EmailAutomation) error
}
