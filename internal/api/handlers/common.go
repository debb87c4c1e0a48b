package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/taskhub/taskhub-backend/internal/apperr"
)

// decode unmarshals the request body; any decode failure is a malformed
// request, not a validation failure.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.ErrMalformed
	}
	return nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts full timestamps and plain dates; empty means absent.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.ErrMalformed
}
