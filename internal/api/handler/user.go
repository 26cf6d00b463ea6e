package handler

import (
	"net/http"

	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/service"
)

// UserHandler handles member management and profile endpoints
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the caller's own account
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Me(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, user)
}

// ListEmployees lists the workspace's employee accounts
func (h *UserHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	users, err := h.userService.ListEmployees(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, users)
}

// ListMembers lists every member of the workspace
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	users, err := h.userService.ListMembers(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, users)
}

// CreateMember creates a member with a one-time temp password
func (h *UserHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var input domain.MemberCreate
	if !decode(w, r, &input) {
		return
	}

	creds, err := h.userService.CreateMember(r.Context(), a, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, creds)
}

// ResetMemberPassword issues a fresh one-time temp password for a member
func (h *UserHandler) ResetMemberPassword(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "memberID")
	if !ok {
		return
	}

	creds, err := h.userService.ResetMemberPassword(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, creds)
}

// ToggleEmailNotifications flips the caller's reminder email opt-in
func (h *UserHandler) ToggleEmailNotifications(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	enabled, err := h.userService.ToggleEmailNotifications(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{"email_notifications": enabled})
}
