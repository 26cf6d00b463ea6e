package handler

import (
	"net/http"

	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/service"
)

// EmailHandler handles email automation endpoints
type EmailHandler struct {
	emailService *service.EmailService
}

// NewEmailHandler creates a new email automation handler
func NewEmailHandler(emailService *service.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// Create schedules an email automation
func (h *EmailHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var input domain.EmailAutomationCreate
	if !decode(w, r, &input) {
		return
	}

	automation, err := h.emailService.Create(r.Context(), a, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, automation)
}

// List returns the workspace's automations
func (h *EmailHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	automations, err := h.emailService.List(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, automations)
}
