package repository

import (
	"context"
	"errors"

	"github.com/taskhub/taskhub-backend/internal/models"
)

// Sentinels translated from driver-level errors so the services never see
// pgx internals.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id string) error
}

type Projects interface {
	Create(ctx context.Context, p models.Project) (models.Project, error)
	GetByID(ctx context.Context, id string) (models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, p models.Project) error
	Delete(ctx context.Context, id string) error

	// CountByOwner backs the referential guard on user deletion.
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

type Tasks interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	GetByID(ctx context.Context, id string) (models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)
	Update(ctx context.Context, t models.Task) error
	Delete(ctx context.Context, id string) error

	CountByProject(ctx context.Context, projectID string) (int64, error)
	CountByAssignee(ctx context.Context, userID string) (int64, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Repositories bundles one implementation of every contract.
type Repositories struct {
	Users     Users
	Projects  Projects
	Tasks     Tasks
	AuditLogs AuditLogs
}
