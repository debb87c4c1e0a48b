package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskhub/taskhub-backend/internal/apperr"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteDomainError maps a failure raised by the services to its HTTP shape.
// Anything outside the taxonomy is a 500 with a generic message; the real
// error stays in the log.
func WriteDomainError(w http.ResponseWriter, err error) {
	var (
		nf *apperr.NotFoundError
		ve *apperr.ValidationError
		ce *apperr.ConflictError
	)
	switch {
	case errors.As(err, &nf):
		WriteError(w, http.StatusNotFound, "not_found", nf.Error(), nil)
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", ve.Fields)
	case errors.Is(err, apperr.ErrMalformed):
		WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
	case errors.As(err, &ce):
		WriteError(w, http.StatusConflict, "conflict", ce.Error(), nil)
	default:
		slog.Error("internal error", "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
