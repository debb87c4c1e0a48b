// Package memory implements the repository contracts over in-process maps.
// It exists so the services and router can be exercised without postgres;
// reads hand out copies, never the stored records.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
)

type store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	projects map[string]models.Project
	tasks    map[string]models.Task
	audits   []models.AuditLog
	order    int
	ordinals map[string]int // insertion order for stable listings
}

func NewRepositories() repo.Repositories {
	s := &store{
		users:    make(map[string]models.User),
		projects: make(map[string]models.Project),
		tasks:    make(map[string]models.Task),
		ordinals: make(map[string]int),
	}
	return repo.Repositories{
		Users:     &usersStore{s},
		Projects:  &projectsStore{s},
		Tasks:     &tasksStore{s},
		AuditLogs: &auditStore{s},
	}
}

func (s *store) note(id string) {
	s.order++
	s.ordinals[id] = s.order
}

func copyTask(t models.Task) models.Task {
	out := t
	if t.AssigneeIDs != nil {
		out.AssigneeIDs = append([]string(nil), t.AssigneeIDs...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	return out
}

// ---------- users ----------

type usersStore struct{ s *store }

func (r *usersStore) Create(_ context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return models.User{}, repo.ErrDuplicate
		}
	}
	r.s.users[u.ID] = u
	r.s.note(u.ID)
	return u, nil
}

func (r *usersStore) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *usersStore) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r *usersStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r *usersStore) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return r.s.ordinals[out[i].ID] < r.s.ordinals[out[j].ID] })
	return out, nil
}

func (r *usersStore) Update(_ context.Context, u models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && (existing.Username == u.Username || existing.Email == u.Email) {
			return repo.ErrDuplicate
		}
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *usersStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// ---------- projects ----------

type projectsStore struct{ s *store }

func (r *projectsStore) Create(_ context.Context, p models.Project) (models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.projects[p.ID] = p
	r.s.note(p.ID)
	return p, nil
}

func (r *projectsStore) GetByID(_ context.Context, id string) (models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return models.Project{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *projectsStore) List(_ context.Context) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return r.s.ordinals[out[i].ID] < r.s.ordinals[out[j].ID] })
	return out, nil
}

func (r *projectsStore) Update(_ context.Context, p models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; !ok {
		return repo.ErrNotFound
	}
	r.s.projects[p.ID] = p
	return nil
}

func (r *projectsStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.projects, id)
	return nil
}

func (r *projectsStore) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, p := range r.s.projects {
		if p.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// ---------- tasks ----------

type tasksStore struct{ s *store }

func (r *tasksStore) Create(_ context.Context, t models.Task) (models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tasks[t.ID] = copyTask(t)
	r.s.note(t.ID)
	return copyTask(t), nil
}

func (r *tasksStore) GetByID(_ context.Context, id string) (models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return models.Task{}, repo.ErrNotFound
	}
	return copyTask(t), nil
}

func (r *tasksStore) List(_ context.Context) ([]models.Task, error) {
	return r.listWhere(func(models.Task) bool { return true })
}

func (r *tasksStore) ListByProject(_ context.Context, projectID string) ([]models.Task, error) {
	return r.listWhere(func(t models.Task) bool { return t.ProjectID == projectID })
}

func (r *tasksStore) listWhere(keep func(models.Task) bool) ([]models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Task
	for _, t := range r.s.tasks {
		if keep(t) {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.ordinals[out[i].ID] < r.s.ordinals[out[j].ID] })
	return out, nil
}

func (r *tasksStore) Update(_ context.Context, t models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[t.ID]; !ok {
		return repo.ErrNotFound
	}
	r.s.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *tasksStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *tasksStore) CountByProject(_ context.Context, projectID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, t := range r.s.tasks {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (r *tasksStore) CountByAssignee(_ context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, t := range r.s.tasks {
		for _, a := range t.AssigneeIDs {
			if a == userID {
				n++
				break
			}
		}
	}
	return n, nil
}

// ---------- audit logs ----------

type auditStore struct{ s *store }

func (r *auditStore) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, l)
	return nil
}

// Audits returns a snapshot of recorded audit entries, for tests.
func Audits(repos repo.Repositories) []models.AuditLog {
	a, ok := repos.AuditLogs.(*auditStore)
	if !ok {
		return nil
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return append([]models.AuditLog(nil), a.s.audits...)
}
