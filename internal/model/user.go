package model

import "time"

// Subscription statuses mirrored from the billing provider. Anything other
// than active denies access to subscriber resources.
const (
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// User represents a registered user keyed by the identity provider's
// subject id. Created on first login, never hard-deleted.
type User struct {
	ID                   string     `db:"id" json:"id"`
	Email                string     `db:"email" json:"email"`
	FirstName            string     `db:"first_name" json:"first_name"`
	LastName             string     `db:"last_name" json:"last_name"`
	ProfileImageURL      string     `db:"profile_image_url" json:"profile_image_url"`
	StripeCustomerID     *string    `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `db:"stripe_subscription_id" json:"stripe_subscription_id,omitempty"`
	SubscriptionStatus   string     `db:"subscription_status" json:"subscription_status"`
	SubscriptionEndDate  *time.Time `db:"subscription_end_date" json:"subscription_end_date,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// Identity is the profile returned by the identity provider after a
// successful OAuth exchange. It is also what a session stores.
type Identity struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ProfileImageURL string `json:"profile_image_url"`
}
