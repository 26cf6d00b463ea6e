package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/policy"
)

func TestTaskListFilter(t *testing.T) {
	workspaceID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	t.Run("admin sees the whole workspace", func(t *testing.T) {
		actor := domain.Actor{UserID: userID, Role: domain.RoleAdmin, WorkspaceID: workspaceID}

		filter := policy.TaskListFilter(actor)

		assert.Equal(t, workspaceID, filter["workspace"])
		assert.NotContains(t, filter, "assignedTo")
	})

	t.Run("employee sees only assigned tasks", func(t *testing.T) {
		actor := domain.Actor{UserID: userID, Role: domain.RoleEmployee, WorkspaceID: workspaceID}

		filter := policy.TaskListFilter(actor)

		assert.Equal(t, workspaceID, filter["workspace"])
		assert.Equal(t, userID, filter["assignedTo"])
	})
}

func TestTaskReadFilter(t *testing.T) {
	actor := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleEmployee, WorkspaceID: primitive.NewObjectID()}
	taskID := primitive.NewObjectID()

	filter := policy.TaskReadFilter(actor, taskID)

	assert.Equal(t, taskID, filter["_id"])
	assert.Equal(t, actor.WorkspaceID, filter["workspace"])
	assert.Equal(t, actor.UserID, filter["assignedTo"])
}

func TestTaskDeleteFilter(t *testing.T) {
	workspaceID := primitive.NewObjectID()
	taskID := primitive.NewObjectID()

	t.Run("admin gets a workspace-scoped filter", func(t *testing.T) {
		actor := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin, WorkspaceID: workspaceID}

		filter, err := policy.TaskDeleteFilter(actor, taskID)

		assert.NoError(t, err)
		assert.Equal(t, taskID, filter["_id"])
		assert.Equal(t, workspaceID, filter["workspace"])
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		actor := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleEmployee, WorkspaceID: workspaceID}

		_, err := policy.TaskDeleteFilter(actor, taskID)

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeForbidden, derr.Code)
	})
}

func TestCanCreateTask(t *testing.T) {
	admin := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin, WorkspaceID: primitive.NewObjectID()}
	assert.NoError(t, policy.CanCreateTask(admin))

	employee := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleEmployee, WorkspaceID: primitive.NewObjectID()}
	assert.Error(t, policy.CanCreateTask(employee))
}

func TestInvoiceListFilter(t *testing.T) {
	workspaceID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	t.Run("admin sees the whole workspace", func(t *testing.T) {
		actor := domain.Actor{UserID: userID, Role: domain.RoleAdmin, WorkspaceID: workspaceID}

		filter := policy.InvoiceListFilter(actor)

		assert.Equal(t, workspaceID, filter["workspace"])
		assert.NotContains(t, filter, "createdBy")
	})

	t.Run("employee sees only own invoices", func(t *testing.T) {
		actor := domain.Actor{UserID: userID, Role: domain.RoleEmployee, WorkspaceID: workspaceID}

		filter := policy.InvoiceListFilter(actor)

		assert.Equal(t, workspaceID, filter["workspace"])
		assert.Equal(t, userID, filter["createdBy"])
	})
}

func TestInvoiceDeleteFilter(t *testing.T) {
	workspaceID := primitive.NewObjectID()
	invoiceID := primitive.NewObjectID()

	admin := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin, WorkspaceID: workspaceID}
	filter, err := policy.InvoiceDeleteFilter(admin, invoiceID)
	assert.NoError(t, err)
	assert.Equal(t, invoiceID, filter["_id"])
	assert.Equal(t, workspaceID, filter["workspace"])

	employee := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleEmployee, WorkspaceID: workspaceID}
	_, err = policy.InvoiceDeleteFilter(employee, invoiceID)
	assert.Error(t, err)
}

func TestChatFilter(t *testing.T) {
	actor := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleEmployee, WorkspaceID: primitive.NewObjectID()}

	filter := policy.ChatFilter(actor)

	assert.Equal(t, actor.WorkspaceID, filter["workspace"])
	assert.Len(t, filter, 1)
}

func TestRequireAdmin(t *testing.T) {
	admin := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin, WorkspaceID: primitive.NewObjectID()}
	assert.NoError(t, policy.RequireAdmin(admin))

	employee := domain.Actor{UserID: primitive.NewObjectID(), Role: domain.RoleEmployee, WorkspaceID: primitive.NewObjectID()}
	err := policy.RequireAdmin(employee)

	derr, ok := domain.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, domain.CodeForbidden, derr.Code)
}
