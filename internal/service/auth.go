package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/mail"
	"github.com/nexora-hq/nexora/internal/security"
)

// AuthService handles signup, login and the password reset round trip
type AuthService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
	tokenManager  *security.TokenManager
	mailer        mail.Sender
	resetTokenTTL time.Duration
	frontendURL   string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	workspaceRepo domain.WorkspaceRepository,
	tokenManager *security.TokenManager,
	mailer mail.Sender,
	resetTokenTTL time.Duration,
	frontendURL string,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		tokenManager:  tokenManager,
		mailer:        mailer,
		resetTokenTTL: resetTokenTTL,
		frontendURL:   frontendURL,
	}
}

// Signup creates a new workspace with its admin user.
func (s *AuthService) Signup(ctx context.Context, input domain.SignupInput) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, domain.InvalidInput("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	workspace := &domain.Workspace{
		Name: fmt.Sprintf("%s's Workspace", input.Name),
	}
	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	user := &domain.User{
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       string(hashedPassword),
		Role:               domain.RoleAdmin,
		WorkspaceID:        workspace.ID,
		EmailNotifications: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	workspace.CreatedBy = user.ID
	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to link workspace to admin: %w", err)
	}

	return user, nil
}

// Login authenticates a user and issues a token carrying id, role and
// workspace. Role changes take effect only on re-authentication.
func (s *AuthService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.Unauthorized("invalid credentials")
	}

	token, err := s.tokenManager.Generate(user.ID, user.Role, user.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.AuthResult{
		Token: token,
		User: domain.UserInfo{
			ID:   user.ID,
			Name: user.Name,
			Role: user.Role,
		},
	}, nil
}

// ForgotPassword issues a reset token. The response is identical whether or
// not the email exists, so account presence is not probeable.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, tokenHash, err := security.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiry := time.Now().Add(s.resetTokenTTL)
	user.ResetTokenHash = tokenHash
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
	err = s.mailer.Send(mail.Message{
		To:      user.Email,
		Subject: "Reset your password",
		HTML: fmt.Sprintf(`<p>Click the link below to reset your password:</p>
<a href="%s">%s</a>
<p>This link expires in 15 minutes.</p>`, resetLink, resetLink),
	})
	if err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("failed to send reset email")
	}

	return nil
}

// ResetPassword honors a reset only if the SHA-256 of the supplied token
// matches an unexpired stored hash. The token is single use.
func (s *AuthService) ResetPassword(ctx context.Context, token string, input domain.ResetPasswordInput) error {
	if token == "" {
		return domain.InvalidInput("invalid request")
	}

	user, err := s.userRepo.GetByResetTokenHash(ctx, security.HashResetToken(token), time.Now())
	if err != nil {
		return fmt.Errorf("failed to look up reset token: %w", err)
	}
	if user == nil {
		return domain.InvalidInput("token expired or invalid")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
