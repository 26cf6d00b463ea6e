package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice status values. Paid is terminal in scope (no un-pay).
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Customer is the billed party embedded in an invoice
type Customer struct {
	Name    string `bson:"name" json:"name" validate:"required,max=255"`
	Company string `bson:"company,omitempty" json:"company,omitempty" validate:"max=255"`
	Email   string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
}

// InvoiceItem is a single line item. Total is computed, never client-supplied.
type InvoiceItem struct {
	Name     string  `bson:"name" json:"name" validate:"required,max=255"`
	Quantity int     `bson:"quantity" json:"quantity" validate:"required,min=1"`
	Price    float64 `bson:"price" json:"price" validate:"min=0"`
	Total    float64 `bson:"total" json:"total"`
}

// Invoice represents a workspace-scoped invoice
type Invoice struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	InvoiceNumber       string              `bson:"invoiceNumber" json:"invoice_number"`
	Customer            Customer            `bson:"customer" json:"customer"`
	Items               []InvoiceItem       `bson:"items" json:"items"`
	Subtotal            float64             `bson:"subtotal" json:"subtotal"`
	TaxPercent          float64             `bson:"taxPercent" json:"tax_percent"`
	TaxAmount           float64             `bson:"taxAmount" json:"tax_amount"`
	Discount            float64             `bson:"discount" json:"discount"`
	TotalAmount         float64             `bson:"totalAmount" json:"total_amount"`
	Status              string              `bson:"status" json:"status"`
	IssueDate           time.Time           `bson:"issueDate" json:"issue_date"`
	DueDate             *time.Time          `bson:"dueDate,omitempty" json:"due_date,omitempty"`
	CreatedBy           primitive.ObjectID  `bson:"createdBy" json:"created_by"`
	WorkspaceID         primitive.ObjectID  `bson:"workspace" json:"workspace_id"`
	FollowUpTaskCreated bool                `bson:"followUpTaskCreated" json:"follow_up_task_created"`
	FollowUpTaskID      *primitive.ObjectID `bson:"followUpTaskId,omitempty" json:"follow_up_task_id,omitempty"`
	CreatedAt           time.Time           `bson:"createdAt" json:"created_at"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updated_at"`
}

// InvoiceCreate represents invoice submission data
type InvoiceCreate struct {
	Customer   Customer      `json:"customer" validate:"required"`
	Items      []InvoiceItem `json:"items" validate:"required,min=1,dive"`
	TaxPercent float64       `json:"tax_percent" validate:"min=0,max=100"`
	Discount   float64       `json:"discount" validate:"min=0"`
	IssueDate  time.Time     `json:"issue_date" validate:"required"`
	DueDate    *time.Time    `json:"due_date"`
}

// InvoiceUpdate represents item/date edits; totals are recomputed server-side.
type InvoiceUpdate struct {
	Customer   *Customer     `json:"customer,omitempty"`
	Items      []InvoiceItem `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	TaxPercent *float64      `json:"tax_percent,omitempty" validate:"omitempty,min=0,max=100"`
	Discount   *float64      `json:"discount,omitempty" validate:"omitempty,min=0"`
	IssueDate  *time.Time    `json:"issue_date,omitempty"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
}

// InvoiceStatusUpdate carries a status transition request
type InvoiceStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending paid overdue"`
}

// InvoiceExtraction is the completion-service output for AI-assisted submission.
// Totals are deliberately absent; the ledger computes them.
type InvoiceExtraction struct {
	Customer   Customer      `json:"customer"`
	Items      []InvoiceItem `json:"items"`
	TaxPercent float64       `json:"taxPercent"`
	Discount   float64       `json:"discount"`
	IssueDate  string        `json:"issueDate"`
	DueDate    string        `json:"dueDate"`
}

// InvoiceRepository defines the interface for invoice storage
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	FindOne(ctx context.Context, filter bson.M) (*Invoice, error)
	Find(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]Invoice, error)
	Update(ctx context.Context, invoice *Invoice) error
	DeleteOne(ctx context.Context, filter bson.M) (bool, error)
	FindOverdueWithoutFollowUp(ctx context.Context, now time.Time) ([]Invoice, error)
}

// CounterRepository yields monotonically increasing sequence values.
// The invoice sequence is global across workspaces; see the ledger docs.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
