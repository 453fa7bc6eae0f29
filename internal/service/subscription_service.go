package service

import (
	"context"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// SubscriptionService synchronizes the locally cached subscription status
// with the billing provider.
type SubscriptionService interface {
	// RefreshStatus reports the user's subscription state. When a
	// subscription is on file the authoritative state is fetched from
	// the billing provider and written back to the store as a side
	// effect; without one, inactive is reported without a provider call.
	RefreshStatus(ctx context.Context, userID string) (*model.SubscriptionState, error)
}

type subscriptionService struct {
	userRepo repository.UserRepository
	billing  BillingService
	logger   zerolog.Logger
}

// NewSubscriptionService creates a SubscriptionService with a scoped logger.
func NewSubscriptionService(userRepo repository.UserRepository, billing BillingService, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		userRepo: userRepo,
		billing:  billing,
		logger:   logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) RefreshStatus(ctx context.Context, userID string) (*model.SubscriptionState, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		return &model.SubscriptionState{Status: model.SubscriptionStatusInactive}, nil
	}

	state, err := s.billing.SubscriptionStatus(ctx, *user.StripeSubscriptionID)
	if err != nil {
		return nil, err
	}

	var endDate *time.Time
	if !state.CurrentPeriodEnd.IsZero() {
		endDate = &state.CurrentPeriodEnd
	}
	if err := s.userRepo.UpdateSubscriptionStatus(ctx, userID, state.Status, endDate); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("status", state.Status).Msg("Failed to sync subscription status")
		return nil, err
	}
	return state, nil
}
