package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
	"github.com/taskhub/taskhub-backend/internal/repository/memory"
)

// recordingNotifier captures change events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *recordingNotifier) EntityChanged(_ context.Context, ev ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) all() []ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ChangeEvent(nil), n.events...)
}

type fixture struct {
	repos    repo.Repositories
	users    *UserService
	projects *ProjectService
	tasks    *TaskService
	notes    *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	notes := &recordingNotifier{}
	return &fixture{
		repos:    repos,
		users:    NewUserService(repos.Users, repos.Projects, repos.Tasks, notes),
		projects: NewProjectService(repos.Projects, repos.Users, repos.Tasks, notes),
		tasks:    NewTaskService(repos.Tasks, repos.Projects, repos.Users, PermissiveTransitions(), notes),
		notes:    notes,
	}
}

func (f *fixture) mustCreateUser(t *testing.T, username, email string) models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), CreateUserRequest{
		Username: username,
		Email:    email,
		Password: "SecurePass123",
		FullName: "Test User",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) mustCreateProject(t *testing.T, name, ownerID string) models.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), CreateProjectRequest{
		Name:      name,
		OwnerID:   ownerID,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}

func (f *fixture) mustCreateTask(t *testing.T, title, projectID string) models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), CreateTaskRequest{
		Title:     title,
		ProjectID: projectID,
	})
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}

func strPtr(s string) *string { return &s }
