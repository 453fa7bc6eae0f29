package handler

import (
	"errors"
	"net/http"

	"app/internal/acl"
	"app/internal/middleware"
	"app/internal/service"
)

// subscriberGate re-reads the user row and applies the access policy on
// routes reserved for active subscribers.
type subscriberGate struct {
	users  service.UserService
	policy *acl.Policy
}

// requireSubscriber resolves the authenticated user id and checks the
// subscription. It writes the error response itself and reports ok=false
// when the caller must stop.
func (g *subscriberGate) requireSubscriber(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	user, err := g.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return "", false
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return "", false
	}
	if !g.policy.CanAccessSubscriberResource(user) {
		http.Error(w, "active subscription required", http.StatusForbidden)
		return "", false
	}
	return userID, true
}

// userIDFromContext extracts the authenticated user id set by the auth
// middleware.
func userIDFromContext(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	return userID, ok && userID != ""
}
