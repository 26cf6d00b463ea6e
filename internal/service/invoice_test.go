package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nexora-hq/nexora/internal/domain"
)

func adminActor() domain.Actor {
	return domain.Actor{
		UserID:      primitive.NewObjectID(),
		Role:        domain.RoleAdmin,
		WorkspaceID: primitive.NewObjectID(),
	}
}

func employeeActor() domain.Actor {
	return domain.Actor{
		UserID:      primitive.NewObjectID(),
		Role:        domain.RoleEmployee,
		WorkspaceID: primitive.NewObjectID(),
	}
}

func TestCalculateTotals(t *testing.T) {
	t.Run("subtotal tax and discount", func(t *testing.T) {
		items := []domain.InvoiceItem{
			{Name: "design", Quantity: 2, Price: 100},
			{Name: "hosting", Quantity: 1, Price: 50},
		}

		totals := CalculateTotals(items, 10, 20)

		assert.Equal(t, 250.0, totals.Subtotal)
		assert.Equal(t, 25.0, totals.TaxAmount)
		assert.Equal(t, 255.0, totals.TotalAmount)
		assert.Equal(t, 200.0, totals.Items[0].Total)
		assert.Equal(t, 50.0, totals.Items[1].Total)
	})

	t.Run("no float drift", func(t *testing.T) {
		items := []domain.InvoiceItem{
			{Name: "a", Quantity: 1, Price: 0.1},
			{Name: "b", Quantity: 1, Price: 0.2},
		}

		totals := CalculateTotals(items, 0, 0)

		assert.Equal(t, 0.3, totals.Subtotal)
		assert.Equal(t, 0.3, totals.TotalAmount)
	})

	t.Run("empty items", func(t *testing.T) {
		totals := CalculateTotals(nil, 18, 0)
		assert.Equal(t, 0.0, totals.Subtotal)
		assert.Equal(t, 0.0, totals.TotalAmount)
	})
}

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()
	actor := adminActor()

	t.Run("rejects empty items", func(t *testing.T) {
		svc := NewInvoiceService(new(MockInvoiceRepository), nil, nil, new(MockCounterRepository), &fakeProvider{})

		_, err := svc.Create(ctx, actor, domain.InvoiceCreate{})

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeInvalidInput, derr.Code)
	})

	t.Run("numbers and scopes the invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		counterRepo := new(MockCounterRepository)
		svc := NewInvoiceService(invoiceRepo, nil, nil, counterRepo, &fakeProvider{})

		counterRepo.On("Next", ctx, "invoiceNumber").Return(int64(42), nil)
		invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

		invoice, err := svc.Create(ctx, actor, domain.InvoiceCreate{
			Customer:   domain.Customer{Name: "Acme"},
			Items:      []domain.InvoiceItem{{Name: "work", Quantity: 1, Price: 100}},
			TaxPercent: 18,
			IssueDate:  time.Now(),
		})

		assert.NoError(t, err)
		assert.Equal(t, "INV-00042", invoice.InvoiceNumber)
		assert.Equal(t, domain.InvoiceStatusPending, invoice.Status)
		assert.Equal(t, actor.WorkspaceID, invoice.WorkspaceID)
		assert.Equal(t, actor.UserID, invoice.CreatedBy)
		assert.Equal(t, 118.0, invoice.TotalAmount)

		invoiceRepo.AssertExpectations(t)
		counterRepo.AssertExpectations(t)
	})
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	actor := adminActor()

	t.Run("paid is terminal", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(invoiceRepo, nil, nil, nil, &fakeProvider{})

		paid := &domain.Invoice{ID: primitive.NewObjectID(), Status: domain.InvoiceStatusPaid}
		invoiceRepo.On("FindOne", ctx, mock.Anything).Return(paid, nil)

		_, err := svc.UpdateStatus(ctx, actor, paid.ID, domain.InvoiceStatusUpdate{Status: domain.InvoiceStatusPending})

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeInvalidTransition, derr.Code)
	})

	t.Run("pending to paid", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(invoiceRepo, nil, nil, nil, &fakeProvider{})

		pending := &domain.Invoice{ID: primitive.NewObjectID(), Status: domain.InvoiceStatusPending}
		invoiceRepo.On("FindOne", ctx, mock.Anything).Return(pending, nil)
		invoiceRepo.On("Update", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

		invoice, err := svc.UpdateStatus(ctx, actor, pending.ID, domain.InvoiceStatusUpdate{Status: domain.InvoiceStatusPaid})

		assert.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	})

	t.Run("hidden invoice reads as not found", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(invoiceRepo, nil, nil, nil, &fakeProvider{})

		invoiceRepo.On("FindOne", ctx, mock.Anything).Return(nil, nil)

		_, err := svc.UpdateStatus(ctx, actor, primitive.NewObjectID(), domain.InvoiceStatusUpdate{Status: domain.InvoiceStatusPaid})

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeNotFound, derr.Code)
	})
}

func TestInvoiceService_Update(t *testing.T) {
	ctx := context.Background()
	actor := adminActor()

	t.Run("recomputes totals", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(invoiceRepo, nil, nil, nil, &fakeProvider{})

		existing := &domain.Invoice{
			ID:         primitive.NewObjectID(),
			Status:     domain.InvoiceStatusPending,
			Items:      []domain.InvoiceItem{{Name: "old", Quantity: 1, Price: 10, Total: 10}},
			TaxPercent: 10,
		}
		invoiceRepo.On("FindOne", ctx, mock.Anything).Return(existing, nil)
		invoiceRepo.On("Update", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

		invoice, err := svc.Update(ctx, actor, existing.ID, domain.InvoiceUpdate{
			Items: []domain.InvoiceItem{{Name: "new", Quantity: 3, Price: 100}},
		})

		assert.NoError(t, err)
		assert.Equal(t, 300.0, invoice.Subtotal)
		assert.Equal(t, 30.0, invoice.TaxAmount)
		assert.Equal(t, 330.0, invoice.TotalAmount)
	})

	t.Run("future due date re-arms follow-up", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(invoiceRepo, nil, nil, nil, &fakeProvider{})

		taskID := primitive.NewObjectID()
		existing := &domain.Invoice{
			ID:                  primitive.NewObjectID(),
			Status:              domain.InvoiceStatusOverdue,
			Items:               []domain.InvoiceItem{{Name: "x", Quantity: 1, Price: 10}},
			FollowUpTaskCreated: true,
			FollowUpTaskID:      &taskID,
		}
		invoiceRepo.On("FindOne", ctx, mock.Anything).Return(existing, nil)
		invoiceRepo.On("Update", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

		future := time.Now().Add(72 * time.Hour)
		invoice, err := svc.Update(ctx, actor, existing.ID, domain.InvoiceUpdate{DueDate: &future})

		assert.NoError(t, err)
		assert.False(t, invoice.FollowUpTaskCreated)
		assert.Nil(t, invoice.FollowUpTaskID)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("employee forbidden", func(t *testing.T) {
		svc := NewInvoiceService(new(MockInvoiceRepository), nil, nil, nil, &fakeProvider{})

		err := svc.Delete(ctx, employeeActor(), primitive.NewObjectID())

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeForbidden, derr.Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(invoiceRepo, nil, nil, nil, &fakeProvider{})

		invoiceRepo.On("DeleteOne", ctx, mock.Anything).Return(true, nil)

		assert.NoError(t, svc.Delete(ctx, adminActor(), primitive.NewObjectID()))
	})
}

func TestInvoiceService_CreateFollowUpTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and flags", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		taskRepo := new(MockTaskRepository)
		userRepo := new(MockUserRepository)
		svc := NewInvoiceService(invoiceRepo, taskRepo, userRepo, nil, &fakeProvider{})

		creator := &domain.User{ID: primitive.NewObjectID(), Name: "Asha"}
		due := time.Now().Add(-48 * time.Hour)
		overdue := domain.Invoice{
			ID:            primitive.NewObjectID(),
			InvoiceNumber: "INV-00007",
			Status:        domain.InvoiceStatusOverdue,
			DueDate:       &due,
			CreatedBy:     creator.ID,
			WorkspaceID:   primitive.NewObjectID(),
		}

		invoiceRepo.On("FindOverdueWithoutFollowUp", ctx, mock.AnythingOfType("time.Time")).Return([]domain.Invoice{overdue}, nil)
		userRepo.On("GetByID", ctx, creator.ID).Return(creator, nil)
		taskRepo.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Title == "Follow up for Invoice #INV-00007" &&
				task.Source == domain.TaskSourceInvoice &&
				task.SourceID != nil && *task.SourceID == overdue.ID &&
				task.Priority == domain.PriorityHigh &&
				task.AssignedTo == creator.ID &&
				task.WorkspaceID == overdue.WorkspaceID
		})).Return(nil)
		invoiceRepo.On("Update", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.FollowUpTaskCreated && inv.FollowUpTaskID != nil
		})).Return(nil)

		assert.NoError(t, svc.CreateFollowUpTasks(ctx))

		invoiceRepo.AssertExpectations(t)
		taskRepo.AssertExpectations(t)
	})

	t.Run("skips invoices with missing creator", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		taskRepo := new(MockTaskRepository)
		userRepo := new(MockUserRepository)
		svc := NewInvoiceService(invoiceRepo, taskRepo, userRepo, nil, &fakeProvider{})

		overdue := domain.Invoice{ID: primitive.NewObjectID(), CreatedBy: primitive.NewObjectID()}
		invoiceRepo.On("FindOverdueWithoutFollowUp", ctx, mock.AnythingOfType("time.Time")).Return([]domain.Invoice{overdue}, nil)
		userRepo.On("GetByID", ctx, overdue.CreatedBy).Return(nil, nil)

		assert.NoError(t, svc.CreateFollowUpTasks(ctx))

		taskRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_ExtractFromText(t *testing.T) {
	ctx := context.Background()

	t.Run("parses provider JSON", func(t *testing.T) {
		provider := &fakeProvider{
			configured: true,
			response:   "```json\n{\"customer\":{\"name\":\"Acme\"},\"items\":[{\"name\":\"site\",\"quantity\":1,\"price\":5000}],\"taxPercent\":18,\"discount\":0}\n```",
		}
		svc := NewInvoiceService(new(MockInvoiceRepository), nil, nil, nil, provider)

		extraction, err := svc.ExtractFromText(ctx, "invoice Acme for a site, 5000")

		assert.NoError(t, err)
		assert.Equal(t, "Acme", extraction.Customer.Name)
		assert.Equal(t, 18.0, extraction.TaxPercent)
	})

	t.Run("maps garbage output to upstream failure", func(t *testing.T) {
		provider := &fakeProvider{configured: true, response: "sorry, I cannot help with that"}
		svc := NewInvoiceService(new(MockInvoiceRepository), nil, nil, nil, provider)

		_, err := svc.ExtractFromText(ctx, "whatever")

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeUpstreamFailure, derr.Code)
	})
}
