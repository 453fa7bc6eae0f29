package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler drives the OAuth login flow and session lifecycle.
type AuthHandler struct {
	identity   service.IdentityService
	sessions   service.SessionService
	users      service.UserService
	appBaseURL string
	logger     zerolog.Logger
}

func NewAuthHandler(identity service.IdentityService, sessions service.SessionService, users service.UserService, appBaseURL string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		identity:   identity,
		sessions:   sessions,
		users:      users,
		appBaseURL: appBaseURL,
		logger:     logger,
	}
}

// RegisterRoutes mounts the auth routes. Only /auth/user requires a
// session; the rest are entry points into the login flow.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
	mux.HandleFunc("/auth/google", h.beginOAuth)
	mux.HandleFunc("/auth/google/callback", h.oauthCallback)
	mux.Handle("/auth/user", authMw(http.HandlerFunc(h.getAuthUser)))
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	// Routes are mounted under /api; redirects must carry the prefix.
	http.Redirect(w, r, "/api/auth/google", http.StatusFound)
}

func (h *AuthHandler) beginOAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	state, err := h.identity.NewStateToken()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to mint oauth state token")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.identity.AuthURL(state), http.StatusFound)
}

func (h *AuthHandler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.identity.VerifyStateToken(r.URL.Query().Get("state")); err != nil {
		h.logger.Warn().Err(err).Msg("OAuth callback with invalid state")
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	identity, err := h.identity.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Msg("OAuth exchange failed")
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	if _, err := h.users.UpsertFromIdentity(r.Context(), identity); err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to upsert user on login")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Issue(r.Context(), w, identity); err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to issue session")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.appBaseURL, http.StatusFound)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.sessions.Clear(r.Context(), w, r); err != nil {
		h.logger.Error().Err(err).Msg("Failed to clear session")
	}
	http.Redirect(w, r, h.appBaseURL, http.StatusFound)
}

func (h *AuthHandler) getAuthUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := dto.AuthUserResponseDTO{
		User: &dto.UserResponseDTO{
			ID:                  user.ID,
			Email:               user.Email,
			FirstName:           user.FirstName,
			LastName:            user.LastName,
			ProfileImageURL:     user.ProfileImageURL,
			SubscriptionStatus:  user.SubscriptionStatus,
			SubscriptionEndDate: user.SubscriptionEndDate,
			CreatedAt:           user.CreatedAt,
			UpdatedAt:           user.UpdatedAt,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
