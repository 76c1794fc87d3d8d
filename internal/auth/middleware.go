package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cepadmin/cepadmin/internal/platform/httpx"
	"github.com/cepadmin/cepadmin/internal/shared"
)

// Middleware attaches the caller identity to the request context. Requests
// without credentials continue unidentified and are rejected by the handler
// that needs an identity; unverifiable credentials are rejected here.
func (s *Service) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.Authenticate(r)
			switch {
			case err == nil:
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), id))
			case errors.Is(err, shared.ErrMissingCredentials):
			default:
				if logger != nil {
					logger.Warn("authenticate request", slog.Any("error", err), slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
