package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/policy"
	"github.com/nexora-hq/nexora/internal/security"
)

// UserService handles workspace member management
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Me returns the actor's own account.
func (s *UserService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	user, err := s.userRepo.GetInWorkspace(ctx, actor.UserID, actor.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.Unauthorized("account no longer exists")
	}
	return user, nil
}

// ListEmployees lists the workspace's employee accounts; admin only.
func (s *UserService) ListEmployees(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByWorkspace(ctx, actor.WorkspaceID, domain.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return users, nil
}

// ListMembers lists every member of the workspace; admin only.
func (s *UserService) ListMembers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByWorkspace(ctx, actor.WorkspaceID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return users, nil
}

// CreateMember creates a member in the admin's workspace with a temp
// password that is returned exactly once.
func (s *UserService) CreateMember(ctx context.Context, actor domain.Actor, input domain.MemberCreate) (*domain.MemberCredentials, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, domain.InvalidInput("user already exists")
	}

	tempPassword, err := security.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate temp password: %w", err)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       string(hashedPassword),
		Role:               input.Role,
		WorkspaceID:        actor.WorkspaceID,
		EmailNotifications: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return &domain.MemberCredentials{Email: input.Email, Password: tempPassword}, nil
}

// ResetMemberPassword resets a same-workspace member's password to a fresh
// temp password; admin only.
func (s *UserService) ResetMemberPassword(ctx context.Context, actor domain.Actor, memberID primitive.ObjectID) (*domain.MemberCredentials, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	member, err := s.userRepo.GetInWorkspace(ctx, memberID, actor.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, domain.NotFound("member not found")
	}

	tempPassword, err := security.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate temp password: %w", err)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to reset member password: %w", err)
	}

	return &domain.MemberCredentials{Email: member.Email, Password: tempPassword}, nil
}

// ToggleEmailNotifications flips the actor's own reminder opt-in.
func (s *UserService) ToggleEmailNotifications(ctx context.Context, actor domain.Actor) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return false, domain.NotFound("user not found")
	}

	user.EmailNotifications = !user.EmailNotifications
	if err := s.userRepo.Update(ctx, user); err != nil {
		return false, fmt.Errorf("failed to update notification setting: %w", err)
	}
	return user.EmailNotifications, nil
}
