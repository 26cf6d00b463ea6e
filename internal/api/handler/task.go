package handler

import (
	"net/http"

	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/service"
)

// TaskHandler handles task lifecycle endpoints
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles task creation
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var input domain.TaskCreate
	if !decode(w, r, &input) {
		return
	}

	task, err := h.taskService.Create(r.Context(), a, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, task)
}

// List returns the tasks visible to the caller
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, tasks)
}

// Get returns one task by id
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, task)
}

// Update applies a partial task edit
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "taskID")
	if !ok {
		return
	}

	var input domain.TaskUpdate
	if !decode(w, r, &input) {
		return
	}

	task, err := h.taskService.Update(r.Context(), a, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, task)
}

// Close completes a task with a mandatory reason
func (h *TaskHandler) Close(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "taskID")
	if !ok {
		return
	}

	var input domain.TaskClose
	if !decode(w, r, &input) {
		return
	}

	task, err := h.taskService.Close(r.Context(), a, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, task)
}

// Delete removes a task
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "taskID")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), a, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// SendReminder emails the customer behind an invoice-sourced task
func (h *TaskHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.taskService.SendInvoiceReminder(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, task)
}

// Analyze returns an AI priority/effort estimate for a task draft
func (h *TaskHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var input domain.TaskAnalysisInput
	if !decode(w, r, &input) {
		return
	}

	analysis, err := h.taskService.Analyze(r.Context(), a, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, analysis)
}

// Stats returns dashboard task counts for the caller's scope
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.Stats(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, stats)
}
