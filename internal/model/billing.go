package model

import "time"

// SubscriptionCheckout is returned when a new subscription is created.
// ClientSecret is a capability token; it must never be logged.
type SubscriptionCheckout struct {
	SubscriptionID string `json:"subscription_id"`
	ClientSecret   string `json:"client_secret"`
}

// SubscriptionState is the billing provider's authoritative view of a
// subscription.
type SubscriptionState struct {
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
	NextBillingDate  time.Time `json:"next_billing_date"`
}

// PaymentIntent is the slice of the provider's payment intent the order
// workflow needs.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}
