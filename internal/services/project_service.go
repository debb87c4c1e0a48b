package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-backend/internal/apperr"
	"github.com/taskhub/taskhub-backend/internal/api/validate"
	"github.com/taskhub/taskhub-backend/internal/metrics"
	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
)

type CreateProjectRequest struct {
	Name        string
	Description string
	OwnerID     string
	StartDate   time.Time
	EndDate     time.Time
}

type UpdateProjectRequest struct {
	Name        *string
	Description *string
	OwnerID     *string
	StartDate   *time.Time
	EndDate     *time.Time
}

type ProjectService struct {
	projects repo.Projects
	users    repo.Users
	tasks    repo.Tasks
	notify   Notifier
}

func NewProjectService(projects repo.Projects, users repo.Users, tasks repo.Tasks, n Notifier) *ProjectService {
	return &ProjectService{projects: projects, users: users, tasks: tasks, notify: n}
}

func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)

	var errs validate.Errs
	errs = errs.Append(validate.Required("name", req.Name))
	errs = errs.Append(validate.Required("owner_id", req.OwnerID))
	errs = errs.Append(validate.RequiredTime("start_date", req.StartDate))
	errs = errs.Append(validate.RequiredTime("end_date", req.EndDate))
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() {
		errs = errs.Append(validate.DateOrder("end_date", req.StartDate, req.EndDate))
	}
	if len(errs) > 0 {
		metrics.ValidationFailures.Inc()
		return models.Project{}, apperr.Validation(errs)
	}

	if _, err := s.users.GetByID(ctx, req.OwnerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Project{}, apperr.NotFound("user", req.OwnerID)
		}
		return models.Project{}, err
	}

	now := time.Now().UTC()
	p := models.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.projects.Create(ctx, p)
	if err != nil {
		return models.Project{}, err
	}
	metrics.EntityOps.WithLabelValues("project", "create").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "project", ID: created.ID, Action: "created"})
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, req UpdateProjectRequest) (models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Project{}, apperr.NotFound("project", id)
		}
		return models.Project{}, err
	}

	// Date ordering is checked against the merged view, so updating one
	// end of the range still respects the other.
	start, end := p.StartDate, p.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}

	var errs validate.Errs
	if req.Name != nil {
		errs = errs.Append(validate.Required("name", *req.Name))
	}
	if req.OwnerID != nil {
		errs = errs.Append(validate.Required("owner_id", *req.OwnerID))
	}
	if req.StartDate != nil {
		errs = errs.Append(validate.RequiredTime("start_date", *req.StartDate))
	}
	if req.EndDate != nil {
		errs = errs.Append(validate.RequiredTime("end_date", *req.EndDate))
	}
	if req.StartDate != nil || req.EndDate != nil {
		errs = errs.Append(validate.DateOrder("end_date", start, end))
	}
	if len(errs) > 0 {
		metrics.ValidationFailures.Inc()
		return models.Project{}, apperr.Validation(errs)
	}

	if req.OwnerID != nil && *req.OwnerID != p.OwnerID {
		if _, err := s.users.GetByID(ctx, *req.OwnerID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return models.Project{}, apperr.NotFound("user", *req.OwnerID)
			}
			return models.Project{}, err
		}
		p.OwnerID = *req.OwnerID
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	p.StartDate, p.EndDate = start, end
	p.UpdatedAt = time.Now().UTC()

	if err := s.projects.Update(ctx, p); err != nil {
		return models.Project{}, err
	}
	metrics.EntityOps.WithLabelValues("project", "update").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "project", ID: p.ID, Action: "updated"})
	return p, nil
}

// Delete refuses to remove a project that still has tasks.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("project", id)
		}
		return err
	}
	n, err := s.tasks.CountByProject(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("project", id, "project still has tasks")
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("project", id)
		}
		return err
	}
	metrics.EntityOps.WithLabelValues("project", "delete").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "project", ID: id, Action: "deleted"})
	return nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Project{}, apperr.NotFound("project", id)
		}
		return models.Project{}, err
	}
	return p, nil
}

func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}
