package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Actor is the authenticated identity attached to every request,
// derived from the signed token only (no live lookup).
type Actor struct {
	UserID      primitive.ObjectID
	Role        string
	WorkspaceID primitive.ObjectID
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Workspace is the tenant boundary; every other entity references one.
type Workspace struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"created_by"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// User represents a workspace member
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`
	PasswordHash       string             `bson:"password" json:"-"`
	Role               string             `bson:"role" json:"role"`
	WorkspaceID        primitive.ObjectID `bson:"workspace" json:"workspace_id"`
	EmailNotifications bool               `bson:"emailNotifications" json:"email_notifications"`
	ResetTokenHash     string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetTokenExpiry   *time.Time         `bson:"resetPasswordExpiry,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updated_at"`
}

// SignupInput represents admin signup data (creates a new workspace)
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput represents login credentials
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the login response payload
type AuthResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// UserInfo is the public slice of a user returned on login
type UserInfo struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Role string             `json:"role"`
}

// MemberCreate represents admin-driven member creation
type MemberCreate struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role" validate:"required,oneof=admin employee"`
}

// MemberCredentials carries a temp password, returned once on creation/reset.
type MemberCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordInput represents the second leg of a password reset
type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetInWorkspace(ctx context.Context, id, workspaceID primitive.ObjectID) (*User, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID, role string) ([]User, error)
	Update(ctx context.Context, user *User) error
}

// WorkspaceRepository defines the interface for workspace storage
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Workspace, error)
	Update(ctx context.Context, workspace *Workspace) error
}
