package handler

import (
	"net/http"

	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/service"
)

// InvoiceHandler handles invoice ledger endpoints
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles invoice submission
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var input domain.InvoiceCreate
	if !decode(w, r, &input) {
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), a, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, invoice)
}

// List returns the invoices visible to the caller
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.List(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invoices)
}

// Get returns one invoice by id
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "invoiceID")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invoice)
}

// Update edits invoice items/dates and recomputes totals
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "invoiceID")
	if !ok {
		return
	}

	var input domain.InvoiceUpdate
	if !decode(w, r, &input) {
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), a, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invoice)
}

// UpdateStatus applies a status transition
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "invoiceID")
	if !ok {
		return
	}

	var input domain.InvoiceStatusUpdate
	if !decode(w, r, &input) {
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(r.Context(), a, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invoice)
}

// Delete removes an invoice
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "invoiceID")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(r.Context(), a, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Extract runs AI invoice extraction over free text; nothing is persisted
func (h *InvoiceHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}

	var input struct {
		Prompt string `json:"prompt" validate:"required,max=10000"`
	}
	if !decode(w, r, &input) {
		return
	}

	extraction, err := h.invoiceService.ExtractFromText(r.Context(), input.Prompt)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, extraction)
}
