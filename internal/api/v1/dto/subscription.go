package dto

// SubscriptionCheckoutResponseDTO is returned when a subscription is created.
type SubscriptionCheckoutResponseDTO struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret"`
}

// SubscriptionStatusResponseDTO reports the synced subscription state.
// Timestamps are unix seconds; zero when no subscription is on file.
type SubscriptionStatusResponseDTO struct {
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"currentPeriodEnd,omitempty"`
	NextBillingDate  int64  `json:"nextBillingDate,omitempty"`
}

// PortalSessionResponseDTO carries the billing portal URL.
type PortalSessionResponseDTO struct {
	URL string `json:"url"`
}
