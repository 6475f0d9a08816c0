package httpserver

import (
	"context"
	"net/http"
	"strings"

	"parley/internal/domain"
	"parley/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthMiddleware validates the Bearer token and attaches the user to the
// context. Missing or invalid assertions fail with 401 before any handler
// runs.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			userID, err := tokens.Subject(claims)
			if err != nil {
				writeError(w, domain.ErrUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil || user == nil {
				writeError(w, domain.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
