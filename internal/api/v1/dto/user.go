package dto

import "time"

// UserResponseDTO is returned in API responses
type UserResponseDTO struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	ProfileImageURL     string     `json:"profileImageUrl"`
	SubscriptionStatus  string     `json:"subscriptionStatus"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// AuthUserResponseDTO wraps the authenticated user's profile.
type AuthUserResponseDTO struct {
	User *UserResponseDTO `json:"user"`
}
