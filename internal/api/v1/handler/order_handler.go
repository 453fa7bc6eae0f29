package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/acl"
	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// OrderHandler exposes the postcard order endpoints. Listing and
// creation are reserved for active subscribers; confirmation only
// requires the session, so a lapsed subscriber can still finish paying.
type OrderHandler struct {
	orders   service.OrderService
	gate     *subscriberGate
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewOrderHandler(orders service.OrderService, users service.UserService, policy *acl.Policy, v *validator.Validate, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		gate:     &subscriberGate{users: users, policy: policy},
		validate: v,
		logger:   logger,
	}
}

// RegisterRoutes registers the order endpoints.
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/postcard-orders", authMw(http.HandlerFunc(h.handleOrders)))
	mux.Handle("/postcard-orders/", authMw(http.HandlerFunc(h.confirmOrder)))
}

func (h *OrderHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listOrders(w, r)
	case http.MethodPost:
		h.createOrder(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.gate.requireSubscriber(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.GetUserOrders(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list orders")
		http.Error(w, "failed to retrieve orders", http.StatusInternalServerError)
		return
	}

	resp := make([]dto.OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, dto.OrderResponseDTO{
			ID:              o.ID,
			PostcardID:      o.PostcardID,
			Quantity:        o.Quantity,
			TotalAmount:     o.TotalAmount,
			OrderStatus:     o.OrderStatus,
			ShippingAddress: o.ShippingAddress,
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.gate.requireSubscriber(w, r)
	if !ok {
		return
	}

	var req dto.OrderCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	order, clientSecret, err := h.orders.CreateOrder(r.Context(), userID, req.PostcardID, req.ShippingAddress)
	if err != nil {
		if errors.Is(err, service.ErrPostcardNotFound) {
			http.Error(w, "postcard not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Str("postcard_id", req.PostcardID).Msg("Failed to create order")
		http.Error(w, "failed to create order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dto.OrderCheckoutResponseDTO{
		OrderID:      order.ID,
		ClientSecret: clientSecret,
	})
}

func (h *OrderHandler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orderID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/postcard-orders/"), "/confirm")
	if orderID == "" || strings.Contains(orderID, "/") || !strings.HasSuffix(r.URL.Path, "/confirm") {
		http.NotFound(w, r)
		return
	}

	order, err := h.orders.ConfirmOrder(r.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case errors.Is(err, service.ErrPaymentNotCompleted):
			http.Error(w, "payment has not completed", http.StatusPaymentRequired)
		default:
			h.logger.Error().Err(err).Str("order_id", orderID).Msg("Failed to confirm order")
			http.Error(w, "failed to confirm order", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.OrderConfirmResponseDTO{Status: order.OrderStatus})
}
