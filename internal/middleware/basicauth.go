package middleware

import (
	"net/http"

	"github.com/taskhub/taskhub-backend/internal/api/httpx"
	"github.com/taskhub/taskhub-backend/internal/auth"
)

// BasicAuth guards mutating routes with HTTP Basic credentials checked
// against the injected verifier. The verified username lands in the
// request context.
func BasicAuth(v auth.CredentialVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || v.Verify(r.Context(), username, password) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="taskhub"`)
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
				return
			}
			ctx := WithUser(r.Context(), UserCtx{Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
