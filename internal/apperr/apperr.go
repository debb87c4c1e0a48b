// Package apperr is the domain failure taxonomy. Services produce these
// values; the transport boundary maps them to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"

	"github.com/taskhub/taskhub-backend/internal/api/validate"
)

// ErrMalformed marks a request body that could not be decoded at all.
var ErrMalformed = errors.New("malformed request")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }

func NotFound(kind, id string) error { return &NotFoundError{Kind: kind, ID: id} }

// ValidationError aggregates every failing field, not just the first.
type ValidationError struct {
	Fields validate.Errs
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func Validation(fields validate.Errs) error { return &ValidationError{Fields: fields} }

// ConflictError covers uniqueness violations and referential guards on delete.
type ConflictError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.ID, e.Reason)
}

func Conflict(kind, id, reason string) error {
	return &ConflictError{Kind: kind, ID: id, Reason: reason}
}
