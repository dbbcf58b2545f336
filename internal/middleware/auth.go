package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/morningistar/study-buddy/pkg/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenResolver resolves a bearer token to a user identifier.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RequireAuth rejects requests without a resolvable bearer token and stores
// the resolved user ID in the request context.
func RequireAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolver.Resolve(r.Context(), BearerToken(r))
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header, falling back
// to the "token" query parameter for WebSocket upgrades where custom headers
// are unavailable to browsers.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// UserIDFromContext returns the authenticated user ID placed by RequireAuth.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
