package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskhub/taskhub-backend/internal/api/httpx"
	"github.com/taskhub/taskhub-backend/internal/services"
)

type ProjectHandler struct {
	svc *services.ProjectService
}

func NewProjectHandler(svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type createProjectBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type updateProjectBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	OwnerID     *string `json:"owner_id"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createProjectBody
	if err := decode(r, &body); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	p, err := h.svc.Create(r.Context(), services.CreateProjectRequest{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     body.OwnerID,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateProjectBody
	if err := decode(r, &body); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	req := services.UpdateProjectRequest{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     body.OwnerID,
	}
	var err error
	if req.StartDate, err = parseOptionalDate(body.StartDate); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if req.EndDate, err = parseOptionalDate(body.EndDate); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
