package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup creates a workspace plus its admin account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input domain.SignupInput
	if !decode(w, r, &input) {
		return
	}

	user, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, map[string]any{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.LoginInput
	if !decode(w, r, &input) {
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, result)
}

// ForgotPassword starts the reset flow. The response never reveals whether
// the email exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !decode(w, r, &input) {
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), input.Email); err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"message": "if the account exists, a reset link has been sent",
	})
}

// ResetPassword completes the reset flow with the emailed token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var input domain.ResetPasswordInput
	if !decode(w, r, &input) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), token, input); err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{"message": "password updated"})
}
