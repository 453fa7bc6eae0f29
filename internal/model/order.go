package model

import "time"

// Order statuses. An order only ever moves forward: pending -> paid.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// ShippingAddress is an optional delivery address attached to an order.
type ShippingAddress struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PostcardOrder is a print request for one of the owner's postcards.
// Quantity and TotalAmount are fixed at order creation.
type PostcardOrder struct {
	ID                    string           `db:"id" json:"id"`
	UserID                string           `db:"user_id" json:"user_id"`
	PostcardID            string           `db:"postcard_id" json:"postcard_id"`
	Quantity              int              `db:"quantity" json:"quantity"`
	TotalAmount           int              `db:"total_amount" json:"total_amount"`
	StripePaymentIntentID string           `db:"stripe_payment_intent_id" json:"-"`
	OrderStatus           string           `db:"order_status" json:"order_status"`
	ShippingAddress       *ShippingAddress `db:"shipping_address" json:"shipping_address,omitempty"`
	CreatedAt             time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `db:"updated_at" json:"updated_at"`
}
