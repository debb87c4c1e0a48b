package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
	"github.com/taskhub/taskhub-backend/internal/worker"
)

// ChangeEvent describes a successful entity mutation.
type ChangeEvent struct {
	Entity string
	ID     string
	Action string
}

// Notifier receives change events after each successful mutation. The core
// never depends on a notifier doing anything; NopNotifier is the default.
type Notifier interface {
	EntityChanged(ctx context.Context, ev ChangeEvent)
}

type NopNotifier struct{}

func (NopNotifier) EntityChanged(context.Context, ChangeEvent) {}

// AuditNotifier records change events to the audit log, off the request
// goroutine via the worker pool.
type AuditNotifier struct {
	logs repo.AuditLogs
	wp   *worker.Pool
}

func NewAuditNotifier(logs repo.AuditLogs, wp *worker.Pool) *AuditNotifier {
	return &AuditNotifier{logs: logs, wp: wp}
}

func (n *AuditNotifier) EntityChanged(_ context.Context, ev ChangeEvent) {
	entry := models.AuditLog{
		ID:         uuid.NewString(),
		EntityType: ev.Entity,
		EntityID:   &ev.ID,
		Action:     ev.Action,
		CreatedAt:  time.Now().UTC(),
	}
	// The request context may be gone by the time the job runs.
	n.wp.Submit(func() { _ = n.logs.Create(context.Background(), entry) })
}
