package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"app/internal/model"

	"github.com/rs/zerolog"
)

func newOrderFixture() (*fakeOrderRepo, *fakePostcardRepo, *fakeBilling, *fakePublisher, OrderService) {
	orderRepo := newFakeOrderRepo()
	postcardRepo := newFakePostcardRepo()
	billing := newFakeBilling()
	publisher := &fakePublisher{}
	svc := NewOrderService(orderRepo, postcardRepo, billing, publisher, "order-events", zerolog.Nop())
	return orderRepo, postcardRepo, billing, publisher, svc
}

func TestCreateOrderHappyPath(t *testing.T) {
	orderRepo, postcardRepo, billing, _, svc := newOrderFixture()
	postcardRepo.postcards["pc1"] = &model.Postcard{ID: "pc1", UserID: "u1"}

	order, secret, err := svc.CreateOrder(context.Background(), "u1", "pc1", nil)
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if order.Quantity != 20 || order.TotalAmount != 1000 {
		t.Fatalf("unexpected order terms: quantity=%d total=%d", order.Quantity, order.TotalAmount)
	}
	if order.OrderStatus != model.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.OrderStatus)
	}
	if secret == "" {
		t.Fatal("expected a client secret")
	}
	if billing.intentsCreated != 1 {
		t.Fatalf("expected 1 payment intent, got %d", billing.intentsCreated)
	}
	if orderRepo.created != 1 {
		t.Fatalf("expected 1 persisted order, got %d", orderRepo.created)
	}
}

func TestCreateOrderForeignPostcard(t *testing.T) {
	orderRepo, postcardRepo, billing, _, svc := newOrderFixture()
	postcardRepo.postcards["pc1"] = &model.Postcard{ID: "pc1", UserID: "owner"}

	if _, _, err := svc.CreateOrder(context.Background(), "intruder", "pc1", nil); !errors.Is(err, ErrPostcardNotFound) {
		t.Fatalf("expected ErrPostcardNotFound, got %v", err)
	}
	if _, _, err := svc.CreateOrder(context.Background(), "u1", "missing", nil); !errors.Is(err, ErrPostcardNotFound) {
		t.Fatalf("expected ErrPostcardNotFound for missing postcard, got %v", err)
	}
	if billing.intentsCreated != 0 || orderRepo.created != 0 {
		t.Fatal("rejected order must not create intents or rows")
	}
}

func TestCreateOrderReusesPendingOrder(t *testing.T) {
	orderRepo, postcardRepo, billing, _, svc := newOrderFixture()
	postcardRepo.postcards["pc1"] = &model.Postcard{ID: "pc1", UserID: "u1"}

	first, firstSecret, err := svc.CreateOrder(context.Background(), "u1", "pc1", nil)
	if err != nil {
		t.Fatalf("first CreateOrder: %v", err)
	}
	second, secondSecret, err := svc.CreateOrder(context.Background(), "u1", "pc1", nil)
	if err != nil {
		t.Fatalf("second CreateOrder: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected the pending order to be reused, got %s and %s", first.ID, second.ID)
	}
	if secondSecret != firstSecret {
		t.Fatalf("expected the same client secret, got %q and %q", firstSecret, secondSecret)
	}
	if billing.intentsCreated != 1 {
		t.Fatalf("expected a single payment intent, got %d", billing.intentsCreated)
	}
	if orderRepo.created != 1 {
		t.Fatalf("expected a single persisted order, got %d", orderRepo.created)
	}
}

func TestConfirmOrderRequiresSucceededIntent(t *testing.T) {
	orderRepo, postcardRepo, billing, _, svc := newOrderFixture()
	postcardRepo.postcards["pc1"] = &model.Postcard{ID: "pc1", UserID: "u1"}

	order, _, err := svc.CreateOrder(context.Background(), "u1", "pc1", nil)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// The intent has not succeeded yet.
	if _, err := svc.ConfirmOrder(context.Background(), order.ID, "u1"); !errors.Is(err, ErrPaymentNotCompleted) {
		t.Fatalf("expected ErrPaymentNotCompleted, got %v", err)
	}
	if stored, _ := orderRepo.GetOrderByID(context.Background(), order.ID); stored.OrderStatus != model.OrderStatusPending {
		t.Fatalf("order must stay pending, got %s", stored.OrderStatus)
	}

	billing.intents[order.StripePaymentIntentID].Status = "succeeded"
	confirmed, err := svc.ConfirmOrder(context.Background(), order.ID, "u1")
	if err != nil {
		t.Fatalf("ConfirmOrder after success: %v", err)
	}
	if confirmed.OrderStatus != model.OrderStatusPaid {
		t.Fatalf("expected paid order, got %s", confirmed.OrderStatus)
	}
}

func TestConfirmOrderForeignOrder(t *testing.T) {
	orderRepo, postcardRepo, billing, _, svc := newOrderFixture()
	postcardRepo.postcards["pc1"] = &model.Postcard{ID: "pc1", UserID: "u1"}

	order, _, err := svc.CreateOrder(context.Background(), "u1", "pc1", nil)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	billing.intents[order.StripePaymentIntentID].Status = "succeeded"

	// Another user cannot confirm it, and missing orders look the same.
	if _, err := svc.ConfirmOrder(context.Background(), order.ID, "intruder"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign order, got %v", err)
	}
	if _, err := svc.ConfirmOrder(context.Background(), "missing", "u1"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for missing order, got %v", err)
	}
	if stored, _ := orderRepo.GetOrderByID(context.Background(), order.ID); stored.OrderStatus != model.OrderStatusPending {
		t.Fatalf("foreign confirm must not change the order, got %s", stored.OrderStatus)
	}
}

func TestConfirmOrderIdempotentAndPublishesOnce(t *testing.T) {
	_, postcardRepo, billing, publisher, svc := newOrderFixture()
	postcardRepo.postcards["pc1"] = &model.Postcard{ID: "pc1", UserID: "u1"}

	order, _, err := svc.CreateOrder(context.Background(), "u1", "pc1", nil)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	billing.intents[order.StripePaymentIntentID].Status = "succeeded"

	if _, err := svc.ConfirmOrder(context.Background(), order.ID, "u1"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := svc.ConfirmOrder(context.Background(), order.ID, "u1"); err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	if len(publisher.payloads) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.payloads))
	}
	var event struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(publisher.payloads[0], &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.OrderID != order.ID || event.Status != model.OrderStatusPaid {
		t.Fatalf("unexpected event: %+v", event)
	}
	if publisher.topics[0] != "order-events" {
		t.Fatalf("unexpected topic %q", publisher.topics[0])
	}
}
