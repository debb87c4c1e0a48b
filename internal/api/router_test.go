package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskhub/taskhub-backend/internal/auth"
	"github.com/taskhub/taskhub-backend/internal/config"
	"github.com/taskhub/taskhub-backend/internal/repository/memory"
	"github.com/taskhub/taskhub-backend/internal/services"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repos := memory.NewRepositories()
	n := services.NopNotifier{}
	us := services.NewUserService(repos.Users, repos.Projects, repos.Tasks, n)
	ps := services.NewProjectService(repos.Projects, repos.Users, repos.Tasks, n)
	ts := services.NewTaskService(repos.Tasks, repos.Projects, repos.Users, services.PermissiveTransitions(), n)
	verifier := auth.NewRepoVerifier(repos.Users)
	return NewRouter(config.Config{Env: "test"}, verifier, us, ps, ts)
}

type testClient struct {
	t    *testing.T
	h    http.Handler
	user string
	pass string
}

func (c *testClient) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func (c *testClient) register(username, email string) map[string]any {
	c.t.Helper()
	rec, body := c.do(http.MethodPost, "/api/v1/users", map[string]any{
		"username":  username,
		"email":     email,
		"password":  "SecurePass123",
		"full_name": "Test User",
	})
	if rec.Code != http.StatusCreated {
		c.t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	return body
}

func TestProjectTaskLifecycle(t *testing.T) {
	h := newTestServer(t)
	c := &testClient{t: t, h: h}

	owner := c.register("john_doe", "john@example.com")
	peer := c.register("jane_roe", "jane@example.com")
	c.user, c.pass = "john_doe", "SecurePass123"

	rec, project := c.do(http.MethodPost, "/api/v1/projects", map[string]any{
		"name":       "Website Redesign",
		"owner_id":   owner["id"],
		"start_date": "2026-01-01",
		"end_date":   "2026-06-30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: %d %s", rec.Code, rec.Body.String())
	}
	projectID, _ := project["id"].(string)
	if projectID == "" {
		t.Fatalf("no generated project id: %v", project)
	}

	rec, task := c.do(http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":        "Design homepage mockup",
		"project_id":   projectID,
		"priority":     "HIGH",
		"due_date":     "2026-02-01T17:00",
		"assignee_ids": []string{owner["id"].(string), peer["id"].(string)},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: %d %s", rec.Code, rec.Body.String())
	}
	if task["status"] != "PENDING" {
		t.Fatalf("status should default to PENDING, got %v", task["status"])
	}
	taskID := task["id"].(string)

	rec, updated := c.do(http.MethodPut, "/api/v1/tasks/"+taskID, map[string]any{
		"status": "IN_PROGRESS",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update task: %d %s", rec.Code, rec.Body.String())
	}
	if updated["status"] != "IN_PROGRESS" {
		t.Fatalf("status not applied: %v", updated["status"])
	}

	rec, got := c.do(http.MethodGet, "/api/v1/tasks/"+taskID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task: %d", rec.Code)
	}
	if got["status"] != "IN_PROGRESS" {
		t.Fatalf("stored status %v", got["status"])
	}
	if got["title"] != "Design homepage mockup" || got["priority"] != "HIGH" {
		t.Fatalf("other fields changed: %v", got)
	}

	rec, _ = c.do(http.MethodGet, "/api/v1/projects/"+projectID+"/tasks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list project tasks: %d", rec.Code)
	}
	var tasks []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode task list: %v", err)
	}
	if len(tasks) != 1 || tasks[0]["id"] != taskID {
		t.Fatalf("unexpected project task list: %v", tasks)
	}
}

func TestGetIsByteIdenticalWithoutMutation(t *testing.T) {
	h := newTestServer(t)
	c := &testClient{t: t, h: h}
	u := c.register("john_doe", "john@example.com")

	first, _ := c.do(http.MethodGet, "/api/v1/users/"+u["id"].(string), nil)
	second, _ := c.do(http.MethodGet, "/api/v1/users/"+u["id"].(string), nil)
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("reads differ:\n%s\n%s", first.Body.String(), second.Body.String())
	}
}

func TestDuplicateUsernameConflicts(t *testing.T) {
	h := newTestServer(t)
	c := &testClient{t: t, h: h}
	c.register("john_doe", "john@example.com")

	rec, body := c.do(http.MethodPost, "/api/v1/users", map[string]any{
		"username":  "john_doe",
		"email":     "second@example.com",
		"password":  "SecurePass123",
		"full_name": "Second",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
	if body["code"] != "conflict" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestMultiFieldValidationListsEveryField(t *testing.T) {
	h := newTestServer(t)
	c := &testClient{t: t, h: h}

	rec, body := c.do(http.MethodPost, "/api/v1/users", map[string]any{
		"username":  "",
		"email":     "not-an-email",
		"password":  "SecurePass123",
		"full_name": "X",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	details, ok := body["details"].([]any)
	if !ok || len(details) != 2 {
		t.Fatalf("expected two field errors, got %v", body["details"])
	}
	fields := map[string]bool{}
	for _, d := range details {
		m := d.(map[string]any)
		fields[m["field"].(string)] = true
	}
	if !fields["username"] || !fields["email"] {
		t.Fatalf("missing fields in %v", fields)
	}
}

func TestDeleteNonexistentIs404(t *testing.T) {
	h := newTestServer(t)
	c := &testClient{t: t, h: h}
	c.register("john_doe", "john@example.com")
	c.user, c.pass = "john_doe", "SecurePass123"

	rec, body := c.do(http.MethodDelete, "/api/v1/tasks/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body["code"] != "not_found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestMalformedBodyIs400(t *testing.T) {
	h := newTestServer(t)
	c := &testClient{t: t, h: h}
	c.register("john_doe", "john@example.com")
	c.user, c.pass = "john_doe", "SecurePass123"

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewReader([]byte("{not json")))
	req.SetBasicAuth(c.user, c.pass)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMutationsRequireCredentials(t *testing.T) {
	h := newTestServer(t)
	c := &testClient{t: t, h: h}
	c.register("john_doe", "john@example.com")

	// No credentials.
	rec, _ := c.do(http.MethodPost, "/api/v1/projects", map[string]any{"name": "X"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("missing challenge header")
	}

	// Wrong password.
	c.user, c.pass = "john_doe", "WrongPass999"
	rec, _ = c.do(http.MethodPost, "/api/v1/projects", map[string]any{"name": "X"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad password, got %d", rec.Code)
	}

	// Reads stay open.
	c.user, c.pass = "", ""
	rec, _ = c.do(http.MethodGet, "/api/v1/projects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open read, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}
