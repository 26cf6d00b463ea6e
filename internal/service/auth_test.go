package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/security"
)

func newAuthService(userRepo *MockUserRepository, workspaceRepo *MockWorkspaceRepository, mailer *fakeMailer) *AuthService {
	tokens := security.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(userRepo, workspaceRepo, tokens, mailer, 15*time.Minute, "http://localhost:5173")
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates workspace and admin", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		workspaceRepo := new(MockWorkspaceRepository)
		svc := newAuthService(userRepo, workspaceRepo, &fakeMailer{})

		userRepo.On("GetByEmail", ctx, "asha@x.test").Return(nil, nil)
		workspaceRepo.On("Create", ctx, mock.MatchedBy(func(ws *domain.Workspace) bool {
			return ws.Name == "Asha's Workspace"
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Workspace).ID = primitive.NewObjectID()
		})
		userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleAdmin && u.EmailNotifications && u.PasswordHash != "s3cretpass"
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = primitive.NewObjectID()
		})
		workspaceRepo.On("Update", ctx, mock.MatchedBy(func(ws *domain.Workspace) bool {
			return !ws.CreatedBy.IsZero()
		})).Return(nil)

		user, err := svc.Signup(ctx, domain.SignupInput{Name: "Asha", Email: "asha@x.test", Password: "s3cretpass"})

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		workspaceRepo.AssertExpectations(t)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newAuthService(userRepo, new(MockWorkspaceRepository), &fakeMailer{})

		userRepo.On("GetByEmail", ctx, "taken@x.test").Return(&domain.User{}, nil)

		_, err := svc.Signup(ctx, domain.SignupInput{Name: "X", Email: "taken@x.test", Password: "s3cretpass"})

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeInvalidInput, derr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	user := &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "Asha",
		Email:        "asha@x.test",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		WorkspaceID:  primitive.NewObjectID(),
	}

	t.Run("issues token on valid credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newAuthService(userRepo, new(MockWorkspaceRepository), &fakeMailer{})

		userRepo.On("GetByEmail", ctx, "asha@x.test").Return(user, nil)

		result, err := svc.Login(ctx, domain.LoginInput{Email: "asha@x.test", Password: "s3cretpass"})

		assert.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "Asha", result.User.Name)

		tokens := security.NewTokenManager("test-secret", time.Hour)
		userID, role, workspaceID, err := tokens.Validate(result.Token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, userID)
		assert.Equal(t, domain.RoleAdmin, role)
		assert.Equal(t, user.WorkspaceID, workspaceID)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newAuthService(userRepo, new(MockWorkspaceRepository), &fakeMailer{})

		userRepo.On("GetByEmail", ctx, "asha@x.test").Return(user, nil)
		userRepo.On("GetByEmail", ctx, "ghost@x.test").Return(nil, nil)

		_, errWrongPass := svc.Login(ctx, domain.LoginInput{Email: "asha@x.test", Password: "nope"})
		_, errNoUser := svc.Login(ctx, domain.LoginInput{Email: "ghost@x.test", Password: "nope"})

		assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email silently succeeds", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		mailer := &fakeMailer{}
		svc := newAuthService(userRepo, new(MockWorkspaceRepository), mailer)

		userRepo.On("GetByEmail", ctx, "ghost@x.test").Return(nil, nil)

		assert.NoError(t, svc.ForgotPassword(ctx, "ghost@x.test"))
		assert.Empty(t, mailer.sent)
	})

	t.Run("round trip stores a hash and emails the raw token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		mailer := &fakeMailer{}
		svc := newAuthService(userRepo, new(MockWorkspaceRepository), mailer)

		user := &domain.User{ID: primitive.NewObjectID(), Email: "asha@x.test"}
		userRepo.On("GetByEmail", ctx, "asha@x.test").Return(user, nil)
		userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.ResetTokenHash != "" && u.ResetTokenExpiry != nil
		})).Return(nil)

		assert.NoError(t, svc.ForgotPassword(ctx, "asha@x.test"))
		assert.Len(t, mailer.sent, 1)
		// the stored value is a hash, never the token itself
		assert.NotContains(t, mailer.sent[0].HTML, user.ResetTokenHash)
		assert.Contains(t, mailer.sent[0].HTML, "/reset-password/")
	})

	t.Run("reset clears the token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newAuthService(userRepo, new(MockWorkspaceRepository), &fakeMailer{})

		token, tokenHash, err := security.GenerateResetToken()
		assert.NoError(t, err)

		expiry := time.Now().Add(10 * time.Minute)
		user := &domain.User{ID: primitive.NewObjectID(), ResetTokenHash: tokenHash, ResetTokenExpiry: &expiry}
		userRepo.On("GetByResetTokenHash", ctx, tokenHash, mock.AnythingOfType("time.Time")).Return(user, nil)
		userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.ResetTokenHash == "" && u.ResetTokenExpiry == nil && u.PasswordHash != ""
		})).Return(nil)

		err = svc.ResetPassword(ctx, token, domain.ResetPasswordInput{Password: "brandnewpass"})

		assert.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("expired or reused token rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newAuthService(userRepo, new(MockWorkspaceRepository), &fakeMailer{})

		userRepo.On("GetByResetTokenHash", ctx, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, nil)

		err := svc.ResetPassword(ctx, "stale-token", domain.ResetPasswordInput{Password: "brandnewpass"})

		derr, ok := domain.AsError(err)
		assert.True(t, ok)
		assert.Equal(t, domain.CodeInvalidInput, derr.Code)
	})
}
