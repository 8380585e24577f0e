package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/masembe/momopay-backend/internal/api/httpx"
)

// Recover turns handler panics into 500 responses. A panic inside a webhook
// handler must not take the process down; the provider will redeliver.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"err", rec,
					"path", r.URL.Path,
					"request_id", RequestIDFrom(r.Context()),
					"stack", string(debug.Stack()),
				)
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
