package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-backend/internal/apperr"
	"github.com/taskhub/taskhub-backend/internal/api/validate"
	"github.com/taskhub/taskhub-backend/internal/auth"
	"github.com/taskhub/taskhub-backend/internal/metrics"
	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 8

type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

// UpdateUserRequest carries only the fields present in the request; nil
// fields are left untouched.
type UpdateUserRequest struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
}

type UserService struct {
	users    repo.Users
	projects repo.Projects
	tasks    repo.Tasks
	notify   Notifier
}

func NewUserService(users repo.Users, projects repo.Projects, tasks repo.Tasks, n Notifier) *UserService {
	return &UserService{users: users, projects: projects, tasks: tasks, notify: n}
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	var errs validate.Errs
	errs = errs.Append(validate.Required("username", req.Username))
	if f := validate.Required("email", req.Email); f != nil {
		errs = append(errs, *f)
	} else {
		errs = errs.Append(validate.Email("email", req.Email))
	}
	errs = errs.Append(validate.MinLen("password", req.Password, MinPasswordLen))
	errs = errs.Append(validate.Required("full_name", req.FullName))
	if len(errs) > 0 {
		metrics.ValidationFailures.Inc()
		return models.User{}, apperr.Validation(errs)
	}

	if err := s.checkUnique(ctx, "", req.Username, req.Email); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return models.User{}, apperr.Conflict("user", req.Username, "username or email already taken")
		}
		return models.User{}, err
	}
	metrics.EntityOps.WithLabelValues("user", "create").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "user", ID: created.ID, Action: "created"})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, apperr.NotFound("user", id)
		}
		return models.User{}, err
	}

	var errs validate.Errs
	if req.Username != nil {
		errs = errs.Append(validate.Required("username", *req.Username))
	}
	if req.Email != nil {
		if f := validate.Required("email", *req.Email); f != nil {
			errs = append(errs, *f)
		} else {
			errs = errs.Append(validate.Email("email", *req.Email))
		}
	}
	if req.Password != nil {
		errs = errs.Append(validate.MinLen("password", *req.Password, MinPasswordLen))
	}
	if req.FullName != nil {
		errs = errs.Append(validate.Required("full_name", *req.FullName))
	}
	if len(errs) > 0 {
		metrics.ValidationFailures.Inc()
		return models.User{}, apperr.Validation(errs)
	}

	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = hash
	}
	if req.Username != nil || req.Email != nil {
		if err := s.checkUnique(ctx, u.ID, u.Username, u.Email); err != nil {
			return models.User{}, err
		}
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return models.User{}, apperr.Conflict("user", id, "username or email already taken")
		}
		return models.User{}, err
	}
	metrics.EntityOps.WithLabelValues("user", "update").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "user", ID: u.ID, Action: "updated"})
	return u, nil
}

// Delete refuses to remove a user still referenced as a project owner or a
// task assignee.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("user", id)
		}
		return err
	}
	owned, err := s.projects.CountByOwner(ctx, id)
	if err != nil {
		return err
	}
	if owned > 0 {
		return apperr.Conflict("user", id, "still referenced as project owner")
	}
	assigned, err := s.tasks.CountByAssignee(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return apperr.Conflict("user", id, "still referenced as task assignee")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("user", id)
		}
		return err
	}
	metrics.EntityOps.WithLabelValues("user", "delete").Inc()
	s.notify.EntityChanged(ctx, ChangeEvent{Entity: "user", ID: id, Action: "deleted"})
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, apperr.NotFound("user", id)
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) checkUnique(ctx context.Context, selfID, username, email string) error {
	if existing, err := s.users.GetByUsername(ctx, username); err == nil {
		if existing.ID != selfID {
			return apperr.Conflict("user", username, "username already taken")
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		if existing.ID != selfID {
			return apperr.Conflict("user", email, "email already taken")
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return nil
}
