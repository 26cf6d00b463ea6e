package handler

import (
	"net/http"

	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/service"
)

// ChatHandler handles the invoice chatbot endpoint
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Ask answers one invoice question
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var input domain.ChatRequest
	if !decode(w, r, &input) {
		return
	}

	resp, err := h.chatService.Ask(r.Context(), a, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, resp)
}
