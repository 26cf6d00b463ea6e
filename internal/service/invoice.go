package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/llm"
	"github.com/nexora-hq/nexora/internal/policy"
)

// invoiceSequence is the counter backing invoice numbering. The sequence is
// global across workspaces, which leaks invoice volume between tenants; the
// scope is preserved deliberately pending a product decision.
const invoiceSequence = "invoiceNumber"

// InvoiceTotals is the computed money breakdown for an invoice
type InvoiceTotals struct {
	Items       []domain.InvoiceItem
	Subtotal    float64
	TaxAmount   float64
	TotalAmount float64
}

// CalculateTotals computes line totals, subtotal, tax and grand total with
// decimal arithmetic:
//
//	item.total   = item.price * item.quantity
//	subtotal     = sum(item.total)
//	taxAmount    = subtotal * taxPercent / 100
//	totalAmount  = subtotal + taxAmount - discount
func CalculateTotals(items []domain.InvoiceItem, taxPercent, discount float64) InvoiceTotals {
	subtotal := decimal.Zero
	out := make([]domain.InvoiceItem, len(items))
	for i, item := range items {
		lineTotal := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		out[i] = item
		out[i].Total, _ = lineTotal.Float64()
	}

	taxAmount := subtotal.Mul(decimal.NewFromFloat(taxPercent)).Div(decimal.NewFromInt(100))
	totalAmount := subtotal.Add(taxAmount).Sub(decimal.NewFromFloat(discount))

	subtotalF, _ := subtotal.Float64()
	taxAmountF, _ := taxAmount.Float64()
	totalAmountF, _ := totalAmount.Float64()

	return InvoiceTotals{
		Items:       out,
		Subtotal:    subtotalF,
		TaxAmount:   taxAmountF,
		TotalAmount: totalAmountF,
	}
}

// InvoiceService handles invoice computation, numbering, status transitions
// and follow-up task generation.
type InvoiceService struct {
	invoiceRepo domain.InvoiceRepository
	taskRepo    domain.TaskRepository
	userRepo    domain.UserRepository
	counterRepo domain.CounterRepository
	provider    llm.CompletionProvider
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo domain.InvoiceRepository,
	taskRepo domain.TaskRepository,
	userRepo domain.UserRepository,
	counterRepo domain.CounterRepository,
	provider llm.CompletionProvider,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		counterRepo: counterRepo,
		provider:    provider,
	}
}

// Create submits a new invoice. Totals and the invoice number are always
// computed server-side.
func (s *InvoiceService) Create(ctx context.Context, actor domain.Actor, input domain.InvoiceCreate) (*domain.Invoice, error) {
	if len(input.Items) == 0 {
		return nil, domain.InvalidInput("invoice items are required")
	}

	totals := CalculateTotals(input.Items, input.TaxPercent, input.Discount)

	seq, err := s.counterRepo.Next(ctx, invoiceSequence)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	invoice := &domain.Invoice{
		InvoiceNumber: fmt.Sprintf("INV-%05d", seq),
		Customer:      input.Customer,
		Items:         totals.Items,
		Subtotal:      totals.Subtotal,
		TaxPercent:    input.TaxPercent,
		TaxAmount:     totals.TaxAmount,
		Discount:      input.Discount,
		TotalAmount:   totals.TotalAmount,
		Status:        domain.InvoiceStatusPending,
		IssueDate:     input.IssueDate,
		DueDate:       input.DueDate,
		CreatedBy:     actor.UserID,
		WorkspaceID:   actor.WorkspaceID,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

// List returns the invoices visible to the actor, newest first.
func (s *InvoiceService) List(ctx context.Context, actor domain.Actor) ([]domain.Invoice, error) {
	sort := bson.D{{Key: "createdAt", Value: -1}}
	invoices, err := s.invoiceRepo.Find(ctx, policy.InvoiceListFilter(actor), sort, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// Get returns one visible invoice by id.
func (s *InvoiceService) Get(ctx context.Context, actor domain.Actor, invoiceID primitive.ObjectID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindOne(ctx, policy.InvoiceReadFilter(actor, invoiceID))
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, domain.NotFound("invoice not found")
	}
	return invoice, nil
}

// UpdateStatus applies a status transition. Paid is terminal: un-paying is
// rejected.
func (s *InvoiceService) UpdateStatus(ctx context.Context, actor domain.Actor, invoiceID primitive.ObjectID, input domain.InvoiceStatusUpdate) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindOne(ctx, policy.InvoiceWriteFilter(actor, invoiceID))
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, domain.NotFound("invoice not found")
	}

	if invoice.Status == domain.InvoiceStatusPaid && input.Status != domain.InvoiceStatusPaid {
		return nil, domain.InvalidTransition("a paid invoice cannot be reopened")
	}

	invoice.Status = input.Status
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return invoice, nil
}

// Update edits items, customer or dates and recomputes totals. Pushing the
// due date into the future re-arms the follow-up cycle.
func (s *InvoiceService) Update(ctx context.Context, actor domain.Actor, invoiceID primitive.ObjectID, input domain.InvoiceUpdate) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindOne(ctx, policy.InvoiceWriteFilter(actor, invoiceID))
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, domain.NotFound("invoice not found")
	}

	if input.Customer != nil {
		invoice.Customer = *input.Customer
	}
	if input.Items != nil {
		invoice.Items = input.Items
	}
	if input.TaxPercent != nil {
		invoice.TaxPercent = *input.TaxPercent
	}
	if input.Discount != nil {
		invoice.Discount = *input.Discount
	}
	if input.IssueDate != nil {
		invoice.IssueDate = *input.IssueDate
	}
	if input.DueDate != nil {
		invoice.DueDate = input.DueDate
		if input.DueDate.After(time.Now()) {
			invoice.FollowUpTaskCreated = false
			invoice.FollowUpTaskID = nil
		}
	}

	totals := CalculateTotals(invoice.Items, invoice.TaxPercent, invoice.Discount)
	invoice.Items = totals.Items
	invoice.Subtotal = totals.Subtotal
	invoice.TaxAmount = totals.TaxAmount
	invoice.TotalAmount = totals.TotalAmount

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return invoice, nil
}

// Delete removes an invoice; admin only.
func (s *InvoiceService) Delete(ctx context.Context, actor domain.Actor, invoiceID primitive.ObjectID) error {
	filter, err := policy.InvoiceDeleteFilter(actor, invoiceID)
	if err != nil {
		return err
	}

	deleted, err := s.invoiceRepo.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if !deleted {
		return domain.NotFound("invoice not found")
	}
	return nil
}

// ExtractFromText asks the completion service to extract structured invoice
// data from free text. Nothing is persisted; the caller reviews and submits.
func (s *InvoiceService) ExtractFromText(ctx context.Context, prompt string) (*domain.InvoiceExtraction, error) {
	if prompt == "" {
		return nil, domain.InvalidInput("prompt required")
	}

	raw, err := s.provider.Complete(ctx, llm.InvoiceExtractionPrompt(prompt))
	if err != nil {
		return nil, domain.UpstreamFailure("invoice extraction failed")
	}

	extracted := llm.ExtractJSON(raw)
	if extracted == "" {
		return nil, domain.UpstreamFailure("invoice extraction returned no JSON")
	}

	var extraction domain.InvoiceExtraction
	if err := json.Unmarshal([]byte(extracted), &extraction); err != nil {
		return nil, domain.UpstreamFailure("invoice extraction returned malformed JSON")
	}
	return &extraction, nil
}

// CreateFollowUpTasks is the overdue sweep: every unpaid invoice past its
// due date without a follow-up task gets one, assigned to the invoice
// creator. The followUpTaskCreated flag makes repeated runs idempotent.
func (s *InvoiceService) CreateFollowUpTasks(ctx context.Context) error {
	now := time.Now()
	invoices, err := s.invoiceRepo.FindOverdueWithoutFollowUp(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find overdue invoices: %w", err)
	}

	log.Info().Int("count", len(invoices)).Msg("overdue invoices found")

	for _, invoice := range invoices {
		assignee, err := s.userRepo.GetByID(ctx, invoice.CreatedBy)
		if err != nil {
			log.Error().Err(err).Str("invoice", invoice.ID.Hex()).Msg("failed to resolve invoice creator")
			continue
		}
		if assignee == nil {
			log.Warn().Str("invoice", invoice.ID.Hex()).Msg("creator not found for invoice, skipping")
			continue
		}

		dueDate := ""
		if invoice.DueDate != nil {
			dueDate = invoice.DueDate.Format("Mon Jan 2 2006")
		}
		sourceID := invoice.ID
		taskDue := now
		task := &domain.Task{
			Title:       fmt.Sprintf("Follow up for Invoice #%s", invoice.InvoiceNumber),
			Description: fmt.Sprintf("Invoice due date was %s", dueDate),
			Status:      domain.TaskStatusPending,
			Priority:    domain.PriorityHigh,
			DueDate:     &taskDue,
			AssignedTo:  assignee.ID,
			CreatedBy:   assignee.ID,
			WorkspaceID: invoice.WorkspaceID,
			Source:      domain.TaskSourceInvoice,
			SourceID:    &sourceID,
		}
		if err := s.taskRepo.Create(ctx, task); err != nil {
			log.Error().Err(err).Str("invoice", invoice.ID.Hex()).Msg("failed to create follow-up task")
			continue
		}

		inv := invoice
		taskID := task.ID
		inv.FollowUpTaskCreated = true
		inv.FollowUpTaskID = &taskID
		if err := s.invoiceRepo.Update(ctx, &inv); err != nil {
			log.Error().Err(err).Str("invoice", invoice.ID.Hex()).Msg("failed to flag invoice follow-up")
			continue
		}

		log.Info().Str("invoice", invoice.InvoiceNumber).Str("task", task.ID.Hex()).Msg("follow-up task created")
	}
	return nil
}
