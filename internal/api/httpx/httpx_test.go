package httpx

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taskhub/taskhub-backend/internal/apperr"
	"github.com/taskhub/taskhub-backend/internal/api/validate"
)

func writeAndDecode(t *testing.T, err error) (int, APIError) {
	t.Helper()
	rec := httptest.NewRecorder()
	WriteDomainError(rec, err)
	var body APIError
	if derr := json.NewDecoder(rec.Body).Decode(&body); derr != nil {
		t.Fatalf("decode response: %v", derr)
	}
	return rec.Code, body
}

func TestNotFoundMapsTo404(t *testing.T) {
	status, body := writeAndDecode(t, apperr.NotFound("task", "9999"))
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if body.Code != "not_found" {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if !strings.Contains(body.Error, "task") || !strings.Contains(body.Error, "9999") {
		t.Fatalf("message should carry entity kind and id: %q", body.Error)
	}
}

func TestValidationMapsTo400WithEveryField(t *testing.T) {
	fields := validate.Errs{
		{Field: "username", Code: validate.CodeBlank, Msg: "required"},
		{Field: "email", Code: validate.CodeEmail, Msg: "must be a valid email address"},
	}
	status, body := writeAndDecode(t, apperr.Validation(fields))
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if body.Code != "validation_failed" {
		t.Fatalf("unexpected code %s", body.Code)
	}
	details, ok := body.Details.([]any)
	if !ok || len(details) != 2 {
		t.Fatalf("expected both field errors in details, got %#v", body.Details)
	}
}

func TestMalformedMapsTo400(t *testing.T) {
	status, body := writeAndDecode(t, apperr.ErrMalformed)
	if status != 400 || body.Code != "bad_request" {
		t.Fatalf("got %d %s", status, body.Code)
	}
}

func TestConflictMapsTo409(t *testing.T) {
	status, body := writeAndDecode(t, apperr.Conflict("project", "p1", "project still has tasks"))
	if status != 409 || body.Code != "conflict" {
		t.Fatalf("got %d %s", status, body.Code)
	}
}

func TestUnknownErrorMapsTo500WithoutLeaking(t *testing.T) {
	status, body := writeAndDecode(t, errors.New("pq: connection to 10.0.0.3 refused"))
	if status != 500 || body.Code != "internal_error" {
		t.Fatalf("got %d %s", status, body.Code)
	}
	if strings.Contains(body.Error, "10.0.0.3") {
		t.Fatalf("internal details leaked: %q", body.Error)
	}
	if body.Details != nil {
		t.Fatalf("internal details leaked: %#v", body.Details)
	}
}
