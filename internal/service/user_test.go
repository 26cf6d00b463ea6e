package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexora-hq/nexora/internal/domain"
)

func TestUserService_CreateMember(t *testing.T) {
	ctx := context.Background()

	t.Run("employee forbidden", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository))

		_, err := svc.CreateMember(ctx, employeeActor(), domain.MemberCreate{Name: "X", Email: "x@x.test", Role: domain.RoleEmployee})

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeForbidden, derr.Code)
	})

	t.Run("returns the temp password once", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo)
		actor := adminActor()

		var stored *domain.User
		userRepo.On("GetByEmail", ctx, "new@x.test").Return(nil, nil)
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.User)
		})

		creds, err := svc.CreateMember(ctx, actor, domain.MemberCreate{Name: "New", Email: "new@x.test", Role: domain.RoleEmployee})

		assert.NoError(t, err)
		assert.Len(t, creds.Password, 8)
		assert.Equal(t, actor.WorkspaceID, stored.WorkspaceID)
		// stored hash verifies against the returned password but is not it
		assert.NotEqual(t, creds.Password, stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(creds.Password)))
	})
}

func TestUserService_ResetMemberPassword(t *testing.T) {
	ctx := context.Background()
	actor := adminActor()

	t.Run("member outside workspace reads as not found", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo)

		memberID := primitive.NewObjectID()
		userRepo.On("GetInWorkspace", ctx, memberID, actor.WorkspaceID).Return(nil, nil)

		_, err := svc.ResetMemberPassword(ctx, actor, memberID)

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeNotFound, derr.Code)
	})

	t.Run("issues a fresh credential", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo)

		member := &domain.User{ID: primitive.NewObjectID(), Email: "m@x.test", WorkspaceID: actor.WorkspaceID}
		userRepo.On("GetInWorkspace", ctx, member.ID, actor.WorkspaceID).Return(member, nil)
		userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		creds, err := svc.ResetMemberPassword(ctx, actor, member.ID)

		assert.NoError(t, err)
		assert.Equal(t, "m@x.test", creds.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(creds.Password)))
	})
}

func TestUserService_ToggleEmailNotifications(t *testing.T) {
	ctx := context.Background()
	actor := employeeActor()

	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	user := &domain.User{ID: actor.UserID, EmailNotifications: true}
	userRepo.On("GetByID", ctx, actor.UserID).Return(user, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	enabled, err := svc.ToggleEmailNotifications(ctx, actor)

	assert.NoError(t, err)
	assert.False(t, enabled)
}
