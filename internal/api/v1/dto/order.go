package dto

import (
	"time"

	"app/internal/model"
)

// OrderCreateDTO is used for incoming checkout requests.
type OrderCreateDTO struct {
	PostcardID      string                 `json:"postcardId" validate:"required"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress,omitempty" validate:"omitempty"`
}

// OrderCheckoutResponseDTO returns the order id together with the
// payment intent's client secret.
type OrderCheckoutResponseDTO struct {
	OrderID      string `json:"orderId"`
	ClientSecret string `json:"clientSecret"`
}

// OrderConfirmResponseDTO reports the post-confirmation order status.
type OrderConfirmResponseDTO struct {
	Status string `json:"status"`
}

// OrderResponseDTO is returned when listing orders.
type OrderResponseDTO struct {
	ID              string                 `json:"id"`
	PostcardID      string                 `json:"postcardId"`
	Quantity        int                    `json:"quantity"`
	TotalAmount     int                    `json:"totalAmount"`
	OrderStatus     string                 `json:"orderStatus"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}
