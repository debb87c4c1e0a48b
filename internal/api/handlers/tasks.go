package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskhub/taskhub-backend/internal/api/httpx"
	"github.com/taskhub/taskhub-backend/internal/services"
)

type TaskHandler struct {
	svc *services.TaskService
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler { return &TaskHandler{svc: svc} }

type createTaskBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ProjectID   string   `json:"project_id"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"due_date"`
	AssigneeIDs []string `json:"assignee_ids"`
}

type updateTaskBody struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"due_date"`
	AssigneeIDs *[]string `json:"assignee_ids"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createTaskBody
	if err := decode(r, &body); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	req := services.CreateTaskRequest{
		Title:       body.Title,
		Description: body.Description,
		ProjectID:   body.ProjectID,
		Status:      body.Status,
		Priority:    body.Priority,
		AssigneeIDs: body.AssigneeIDs,
	}
	if body.DueDate != "" {
		due, err := parseDate(body.DueDate)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		req.DueDate = &due
	}
	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasks)
}

// ListByProject serves GET /projects/{id}/tasks.
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListByProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateTaskBody
	if err := decode(r, &body); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	req := services.UpdateTaskRequest{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		AssigneeIDs: body.AssigneeIDs,
	}
	var err error
	if req.DueDate, err = parseOptionalDate(body.DueDate); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
