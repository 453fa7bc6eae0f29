package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// BillingHandler exposes the subscription billing endpoints.
type BillingHandler struct {
	users   service.UserService
	billing service.BillingService
	subs    service.SubscriptionService
	logger  zerolog.Logger
}

func NewBillingHandler(users service.UserService, billing service.BillingService, subs service.SubscriptionService, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{users: users, billing: billing, subs: subs, logger: logger}
}

// RegisterRoutes registers the billing endpoints.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/create-subscription", authMw(http.HandlerFunc(h.createSubscription)))
	mux.Handle("/subscription-status", authMw(http.HandlerFunc(h.subscriptionStatus)))
	mux.Handle("/create-portal-session", authMw(http.HandlerFunc(h.createPortalSession)))
}

func (h *BillingHandler) createSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	checkout, err := h.billing.CreateSubscription(r.Context(), user)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create subscription")
		http.Error(w, "failed to create subscription", http.StatusInternalServerError)
		return
	}

	resp := dto.SubscriptionCheckoutResponseDTO{
		SubscriptionID: checkout.SubscriptionID,
		ClientSecret:   checkout.ClientSecret,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *BillingHandler) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.subs.RefreshStatus(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to refresh subscription status")
		http.Error(w, "failed to retrieve subscription status", http.StatusInternalServerError)
		return
	}

	resp := dto.SubscriptionStatusResponseDTO{Status: state.Status}
	if !state.CurrentPeriodEnd.IsZero() {
		resp.CurrentPeriodEnd = state.CurrentPeriodEnd.Unix()
	}
	if !state.NextBillingDate.IsZero() {
		resp.NextBillingDate = state.NextBillingDate.Unix()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *BillingHandler) createPortalSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		http.Error(w, service.ErrNoBillingCustomer.Error(), http.StatusBadRequest)
		return
	}

	url, err := h.billing.CreatePortalSession(r.Context(), *user.StripeCustomerID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create portal session")
		http.Error(w, "failed to create portal session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.PortalSessionResponseDTO{URL: url})
}
