// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/unclebandit/campaignhub-backend/internal/auth"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/handler"
)

// TokenVerifier is satisfied by *auth.JWTManager.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Identity, error)
}

const bearerPrefix = "Bearer "

// RequireAuth admits only requests carrying a valid bearer token and stores
// the caller's identity in the request context.
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				handler.Error(w, r, appErrors.ErrUnauthenticated)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if token == "" {
				handler.Error(w, r, appErrors.ErrUnauthenticated)
				return
			}

			id, err := v.VerifyToken(token)
			if err != nil {
				handler.Error(w, r, appErrors.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
