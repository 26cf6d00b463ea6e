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

// InvoiceRepository handles invoice data access
type InvoiceRepository struct {
	coll *mongo.Collection
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{coll: db.db.Collection(collInvoices)}
}

// Create inserts a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	now := time.Now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	if invoice.ID.IsZero() {
		invoice.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, invoice); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// FindOne retrieves a single invoice; returns (nil, nil) when nothing matches
func (r *InvoiceRepository) FindOne(ctx context.Context, filter bson.M) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.coll.FindOne(ctx, filter).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

// Find lists invoices matching the filter with the given sort; limit <= 0
// means unlimited.
func (r *InvoiceRepository) Find(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]domain.Invoice, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var invoices []domain.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

// Update replaces an invoice document
func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	invoice.UpdatedAt = time.Now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": invoice.ID}, invoice)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("invoice %s not found", invoice.ID.Hex())
	}
	return nil
}

// DeleteOne removes the invoice matching the filter; reports whether a row matched
func (r *InvoiceRepository) DeleteOne(ctx context.Context, filter bson.M) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete invoice: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// FindOverdueWithoutFollowUp lists unpaid invoices past their due date that
// have not yet produced a follow-up task. The followUpTaskCreated guard keeps
// repeated sweep runs idempotent.
func (r *InvoiceRepository) FindOverdueWithoutFollowUp(ctx context.Context, now time.Time) ([]domain.Invoice, error) {
	filter := bson.M{
		"dueDate":             bson.M{"$exists": true, "$ne": nil, "$lt": now},
		"status":              bson.M{"$ne": domain.InvoiceStatusPaid},
		"followUpTaskCreated": false,
	}
	return r.Find(ctx, filter, nil, 0)
}
