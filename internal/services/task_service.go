package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-backend/internal/apperr"
	"github.com/taskhub/taskhub-backend/internal/api/validate"
	"github.com/taskhub/taskhub-backend/internal/metrics"
	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
)

type CreateTaskRequest struct {
	Title       string
	Description string
	ProjectID   string
	Status      string // empty means default PENDING
	Priority    string // empty means default MEDIUM
	DueDate     *time.Time
	AssigneeIDs []string
}

type UpdateTaskRequest struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	AssigneeIDs *[]string
}

type TaskService struct {
	tasks    repo.Tasks
	projects repo.Projects
	users    repo.Users
	policy   TransitionPolicy
	notify   Notifier
}

func NewTaskService(tasks repo.Tasks, projects repo.Projects, users repo.Users, policy TransitionPolicy, n Notifier) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, users: users, policy: policy, notify: n}
}

func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)

	var errs validate.Errs
	errs = errs.Append(validate.Required("title", req.Title))
	errs = errs.Append(validate.Required("project_id", req.ProjectID))
	if req.Status != "" {
		errs = errs.Append(validate.OneOf("status", req.Status, models.TaskStatusValues()...))
	}
	if req.Priority != "" {
		errs = errs.Append(validate.OneOf("priority", req.Priority, models.TaskPriorityValues()...))
	}
	if len(errs) > 0 {
		metrics.ValidationFailures.Inc()
		return models.Task{}, apperr.Validation(errs)
	}

	if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Task{}, apperr.NotFound("project", req.ProjectID)
		}
		return models.Task{}, err
	}
	assignees := normalizeAssignees(req.AssigneeIDs)
	if err := s.checkAssignees(ctx, assignees); err != nil {
		return models.Task{}, err
	}

	status := models.TaskPending
	if req.Status != "" {
		status, _ = models.ParseTaskStatus(req.Status)
	}
	priority := models.PriorityMedium
	if req.Priority != "" {
		priority, _ = models.ParseTaskPriority(req.Priority)
	}

	now := time.Now().UTC()
	t := models.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		AssigneeIDs: assignees,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return models.Task{}, err
	}
	metrics.EntityOps.WithLabelValues("task", "create").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "task", ID: created.ID, Action: "created"})
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, id string, req UpdateTaskRequest) (models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Task{}, apperr.NotFound("task", id)
		}
		return models.Task{}, err
	}

	var errs validate.Errs
	if req.Title != nil {
		errs = errs.Append(validate.Required("title", *req.Title))
	}
	if req.Status != nil {
		errs = errs.Append(validate.OneOf("status", *req.Status, models.TaskStatusValues()...))
	}
	if req.Priority != nil {
		errs = errs.Append(validate.OneOf("priority", *req.Priority, models.TaskPriorityValues()...))
	}
	if len(errs) > 0 {
		metrics.ValidationFailures.Inc()
		return models.Task{}, apperr.Validation(errs)
	}

	if req.Status != nil {
		next, _ := models.ParseTaskStatus(*req.Status)
		if !s.policy.Allowed(t.Status, next) {
			return models.Task{}, apperr.Conflict("task", id,
				"status transition "+string(t.Status)+" -> "+string(next)+" not allowed")
		}
		t.Status = next
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		t.Priority, _ = models.ParseTaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		due := *req.DueDate
		t.DueDate = &due
	}
	if req.AssigneeIDs != nil {
		assignees := normalizeAssignees(*req.AssigneeIDs)
		if err := s.checkAssignees(ctx, assignees); err != nil {
			return models.Task{}, err
		}
		t.AssigneeIDs = assignees
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Task{}, apperr.NotFound("task", id)
		}
		return models.Task{}, err
	}
	metrics.EntityOps.WithLabelValues("task", "update").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "task", ID: t.ID, Action: "updated"})
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("task", id)
		}
		return err
	}
	metrics.EntityOps.WithLabelValues("task", "delete").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "task", ID: id, Action: "deleted"})
	return nil
}

func (s *TaskService) Get(ctx context.Context, id string) (models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Task{}, apperr.NotFound("task", id)
		}
		return models.Task{}, err
	}
	return t, nil
}

func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	return s.tasks.List(ctx)
}

// ListByProject returns the project's tasks, or not-found if the project
// itself is absent.
func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("project", projectID)
		}
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) checkAssignees(ctx context.Context, ids []string) error {
	for _, uid := range ids {
		if _, err := s.users.GetByID(ctx, uid); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("user", uid)
			}
			return err
		}
	}
	return nil
}

// normalizeAssignees dedupes and sorts so reads come back in a stable order.
func normalizeAssignees(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
