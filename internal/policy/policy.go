// Package policy computes the permission decision and the workspace-scoped
// query filter for every resource access. Filters that match nothing are
// reported by callers as not-found, never forbidden, so cross-tenant
// existence is not leaked.
package policy

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nexora-hq/nexora/internal/domain"
)

// TaskListFilter scopes task reads. Admins see the whole workspace;
// employees only tasks assigned to them.
func TaskListFilter(actor domain.Actor) bson.M {
	filter := bson.M{"workspace": actor.WorkspaceID}
	if !actor.IsAdmin() {
		filter["assignedTo"] = actor.UserID
	}
	return filter
}

// TaskReadFilter scopes a single-task read by id.
func TaskReadFilter(actor domain.Actor, taskID primitive.ObjectID) bson.M {
	filter := TaskListFilter(actor)
	filter["_id"] = taskID
	return filter
}

// TaskWriteFilter scopes generic updates and the close operation.
// Same ownership rule as reads: admins may touch any workspace task,
// employees only their own.
func TaskWriteFilter(actor domain.Actor, taskID primitive.ObjectID) bson.M {
	return TaskReadFilter(actor, taskID)
}

// CanCreateTask gates task creation to admins.
func CanCreateTask(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("access denied")
	}
	return nil
}

// TaskDeleteFilter scopes deletion; admin only.
func TaskDeleteFilter(actor domain.Actor, taskID primitive.ObjectID) (bson.M, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("access denied")
	}
	return bson.M{"_id": taskID, "workspace": actor.WorkspaceID}, nil
}

// InvoiceListFilter scopes invoice reads. Admins see the whole workspace;
// employees only invoices they created.
func InvoiceListFilter(actor domain.Actor) bson.M {
	filter := bson.M{"workspace": actor.WorkspaceID}
	if !actor.IsAdmin() {
		filter["createdBy"] = actor.UserID
	}
	return filter
}

// InvoiceReadFilter scopes a single-invoice read by id.
func InvoiceReadFilter(actor domain.Actor, invoiceID primitive.ObjectID) bson.M {
	filter := InvoiceListFilter(actor)
	filter["_id"] = invoiceID
	return filter
}

// InvoiceWriteFilter scopes status and item edits: workspace plus,
// for non-admins, creator ownership.
func InvoiceWriteFilter(actor domain.Actor, invoiceID primitive.ObjectID) bson.M {
	return InvoiceReadFilter(actor, invoiceID)
}

// InvoiceDeleteFilter scopes deletion; admin only.
func InvoiceDeleteFilter(actor domain.Actor, invoiceID primitive.ObjectID) (bson.M, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("access denied")
	}
	return bson.M{"_id": invoiceID, "workspace": actor.WorkspaceID}, nil
}

// ChatFilter is the base tenancy scope for invoice chat queries.
func ChatFilter(actor domain.Actor) bson.M {
	return bson.M{"workspace": actor.WorkspaceID}
}

// RequireAdmin gates user management operations (list/create member,
// admin password reset).
func RequireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("access denied")
	}
	return nil
}
