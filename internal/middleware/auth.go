package middleware

import (
	"context"
	"errors"
	"net/http"

	"app/internal/service"
)

// Injected key type to avoid context collisions
type contextKey string

const UserContextKey = contextKey("user")

// SessionAuth resolves the session cookie to a user id and rejects
// requests without a valid session.
func SessionAuth(sessions service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sessions.Identify(r.Context(), r)
			if err != nil {
				if errors.Is(err, service.ErrNoSession) {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession injects the user id when a valid session is present
// but lets anonymous requests through. Used by the object read path,
// where the policy decides.
func OptionalSession(sessions service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := sessions.Identify(r.Context(), r); err == nil {
				ctx := context.WithValue(r.Context(), UserContextKey, identity.UserID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}
