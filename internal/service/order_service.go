package service

import (
	"context"
	"encoding/json"
	"errors"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentNotCompleted = errors.New("payment has not completed")
)

// Every order is 20 cards for $10.00.
const (
	orderQuantity    = 20
	orderAmountCents = 1000
)

// OrderService coordinates the pending -> paid order lifecycle with the
// billing provider.
type OrderService interface {
	// CreateOrder opens a pending order for one of the requester's own
	// postcards and returns it with the payment intent's client secret.
	// An existing pending order for the same postcard is reused instead
	// of minting a duplicate intent. The client secret is a capability
	// token and must never be logged.
	CreateOrder(ctx context.Context, userID, postcardID string, shipping *model.ShippingAddress) (*model.PostcardOrder, string, error)
	// ConfirmOrder transitions an owned order to paid after verifying
	// with the billing provider that its payment intent succeeded.
	// Orders of other users report not-found. Already-paid orders are
	// confirmed idempotently.
	ConfirmOrder(ctx context.Context, orderID, requesterID string) (*model.PostcardOrder, error)
	GetUserOrders(ctx context.Context, userID string) ([]model.PostcardOrder, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	postcardRepo repository.PostcardRepository
	billing      BillingService
	publisher    pubsub.Publisher
	eventsTopic  string
	logger       zerolog.Logger
}

// NewOrderService creates an OrderService. publisher may be nil when
// order event publishing is disabled.
func NewOrderService(
	orderRepo repository.OrderRepository,
	postcardRepo repository.PostcardRepository,
	billing BillingService,
	publisher pubsub.Publisher,
	eventsTopic string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		postcardRepo: postcardRepo,
		billing:      billing,
		publisher:    publisher,
		eventsTopic:  eventsTopic,
		logger:       logger.With().Str("service", "OrderService").Logger(),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID, postcardID string, shipping *model.ShippingAddress) (*model.PostcardOrder, string, error) {
	postcard, err := s.postcardRepo.GetPostcardByID(ctx, postcardID)
	if err != nil {
		return nil, "", err
	}
	// Foreign postcards are indistinguishable from missing ones.
	if postcard == nil || postcard.UserID != userID {
		return nil, "", ErrPostcardNotFound
	}

	// Collapse double submissions onto the already-open order.
	if open, err := s.orderRepo.GetPendingOrderByPostcard(ctx, userID, postcardID); err != nil {
		return nil, "", err
	} else if open != nil {
		intent, err := s.billing.GetPaymentIntent(ctx, open.StripePaymentIntentID)
		if err != nil {
			return nil, "", err
		}
		return open, intent.ClientSecret, nil
	}

	intent, err := s.billing.CreatePaymentIntent(ctx, orderAmountCents, map[string]string{
		"type":       "postcard_order",
		"userId":     userID,
		"postcardId": postcardID,
	})
	if err != nil {
		return nil, "", err
	}

	order := &model.PostcardOrder{
		ID:                    uuid.NewString(),
		UserID:                userID,
		PostcardID:            postcardID,
		Quantity:              orderQuantity,
		TotalAmount:           orderAmountCents,
		StripePaymentIntentID: intent.ID,
		OrderStatus:           model.OrderStatusPending,
		ShippingAddress:       shipping,
	}
	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("postcard_id", postcardID).Msg("Failed to persist order")
		return nil, "", err
	}
	return order, intent.ClientSecret, nil
}

func (s *orderService) ConfirmOrder(ctx context.Context, orderID, requesterID string) (*model.PostcardOrder, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != requesterID {
		return nil, ErrOrderNotFound
	}
	if order.OrderStatus == model.OrderStatusPaid {
		return order, nil
	}

	// Trust the provider, not the client: only a succeeded intent flips
	// the order to paid.
	intent, err := s.billing.GetPaymentIntent(ctx, order.StripePaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != "succeeded" {
		return nil, ErrPaymentNotCompleted
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, model.OrderStatusPaid); err != nil {
		return nil, err
	}
	order.OrderStatus = model.OrderStatusPaid

	s.publishPaid(ctx, order)
	return order, nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID string) ([]model.PostcardOrder, error) {
	return s.orderRepo.GetOrdersByUserID(ctx, userID)
}

// publishPaid emits an order event for downstream consumers. Best effort:
// failures are logged and never fail the request.
func (s *orderService) publishPaid(ctx context.Context, order *model.PostcardOrder) {
	if s.publisher == nil {
		return
	}
	payload := struct {
		OrderID     string `json:"order_id"`
		UserID      string `json:"user_id"`
		PostcardID  string `json:"postcard_id"`
		Quantity    int    `json:"quantity"`
		AmountCents int    `json:"amount_cents"`
		Status      string `json:"status"`
	}{
		OrderID:     order.ID,
		UserID:      order.UserID,
		PostcardID:  order.PostcardID,
		Quantity:    order.Quantity,
		AmountCents: order.TotalAmount,
		Status:      order.OrderStatus,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to marshal order event")
		return
	}
	if _, err := s.publisher.Publish(ctx, s.eventsTopic, data); err != nil {
		s.logger.Error().Err(err).Str("topic", s.eventsTopic).Str("order_id", order.ID).Msg("Failed to publish order event")
	}
}
