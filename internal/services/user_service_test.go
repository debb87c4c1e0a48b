package services

import (
	"context"
	"errors"
	"testing"

	"github.com/taskhub/taskhub-backend/internal/apperr"
	"github.com/taskhub/taskhub-backend/internal/api/validate"
)

func TestUserCreate_ReturnsReadViewWithGeneratedFields(t *testing.T) {
	f := newFixture(t)
	u, err := f.users.Create(context.Background(), CreateUserRequest{
		Username: "john_doe",
		Email:    "john@example.com",
		Password: "SecurePass123",
		FullName: "John Doe",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps populated")
	}
	if u.PasswordHash == "SecurePass123" {
		t.Fatal("password stored in plaintext")
	}
}

func TestUserCreate_MissingField_NothingPersisted(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Create(context.Background(), CreateUserRequest{
		Username: "",
		Email:    "john@example.com",
		Password: "SecurePass123",
		FullName: "John Doe",
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "username" || ve.Fields[0].Code != validate.CodeBlank {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
	users, err := f.users.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no persisted users, got %d", len(users))
	}
}

func TestUserCreate_MultipleInvalidFields_AllReported(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Create(context.Background(), CreateUserRequest{
		Username: "",
		Email:    "not-an-email",
		Password: "short",
		FullName: "John Doe",
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got := map[string]string{}
	for _, fe := range ve.Fields {
		got[fe.Field] = fe.Code
	}
	want := map[string]string{
		"username": validate.CodeBlank,
		"email":    validate.CodeEmail,
		"password": validate.CodeTooShort,
	}
	for field, code := range want {
		if got[field] != code {
			t.Fatalf("field %s: want code %s, got %q (all: %v)", field, code, got[field], got)
		}
	}
}

func TestUserCreate_DuplicateUsername_Conflict(t *testing.T) {
	f := newFixture(t)
	f.mustCreateUser(t, "john_doe", "john@example.com")

	_, err := f.users.Create(context.Background(), CreateUserRequest{
		Username: "john_doe",
		Email:    "other@example.com",
		Password: "SecurePass123",
		FullName: "Other",
	})
	var ce *apperr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict, got %v", err)
	}

	users, _ := f.users.List(context.Background())
	if len(users) != 1 {
		t.Fatalf("expected single user after duplicate attempt, got %d", len(users))
	}
}

func TestUserUpdate_PartialLeavesOtherFields(t *testing.T) {
	f := newFixture(t)
	u := f.mustCreateUser(t, "john_doe", "john@example.com")

	updated, err := f.users.Update(context.Background(), u.ID, UpdateUserRequest{
		FullName: strPtr("John Q. Doe"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FullName != "John Q. Doe" {
		t.Fatalf("full name not applied: %q", updated.FullName)
	}
	if updated.Username != "john_doe" || updated.Email != "john@example.com" {
		t.Fatalf("unset fields changed: %+v", updated)
	}
}

func TestUserUpdate_InvalidPresentField(t *testing.T) {
	f := newFixture(t)
	u := f.mustCreateUser(t, "john_doe", "john@example.com")

	_, err := f.users.Update(context.Background(), u.ID, UpdateUserRequest{
		Email: strPtr("bad email@"),
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Update(context.Background(), "9999", UpdateUserRequest{FullName: strPtr("x")})
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if nf.Kind != "user" || nf.ID != "9999" {
		t.Fatalf("unexpected not-found payload: %+v", nf)
	}
}

func TestUserDelete_NonexistentIsNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.users.Delete(context.Background(), "9999")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUserDelete_BlockedWhileProjectOwner(t *testing.T) {
	f := newFixture(t)
	u := f.mustCreateUser(t, "owner", "owner@example.com")
	f.mustCreateProject(t, "Website Redesign", u.ID)

	err := f.users.Delete(context.Background(), u.ID)
	var ce *apperr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.users.Get(context.Background(), u.ID); err != nil {
		t.Fatalf("user removed despite guard: %v", err)
	}
}

func TestUserDelete_BlockedWhileAssignee(t *testing.T) {
	f := newFixture(t)
	owner := f.mustCreateUser(t, "owner", "owner@example.com")
	worker := f.mustCreateUser(t, "worker", "worker@example.com")
	p := f.mustCreateProject(t, "Website Redesign", owner.ID)
	_, err := f.tasks.Create(context.Background(), CreateTaskRequest{
		Title:       "Design homepage mockup",
		ProjectID:   p.ID,
		AssigneeIDs: []string{worker.ID},
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	err = f.users.Delete(context.Background(), worker.ID)
	var ce *apperr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUserDelete_UnreferencedSucceeds(t *testing.T) {
	f := newFixture(t)
	u := f.mustCreateUser(t, "loner", "loner@example.com")
	if err := f.users.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := f.users.Get(context.Background(), u.ID)
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestUserMutations_EmitChangeEvents(t *testing.T) {
	f := newFixture(t)
	u := f.mustCreateUser(t, "john_doe", "john@example.com")
	if _, err := f.users.Update(context.Background(), u.ID, UpdateUserRequest{FullName: strPtr("J")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := f.users.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events := f.notes.all()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	wantActions := []string{"created", "updated", "deleted"}
	for i, ev := range events {
		if ev.Entity != "user" || ev.Action != wantActions[i] {
			t.Fatalf("event %d: %+v", i, ev)
		}
	}
}

func TestUserCreate_FailureEmitsNoEvent(t *testing.T) {
	f := newFixture(t)
	_, _ = f.users.Create(context.Background(), CreateUserRequest{Username: ""})
	if events := f.notes.all(); len(events) != 0 {
		t.Fatalf("expected no events on failed create, got %+v", events)
	}
}
