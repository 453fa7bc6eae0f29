package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	billingsession "github.com/stripe/stripe-go/v82/billingportal/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentintent"
	pricepkg "github.com/stripe/stripe-go/v82/price"
	productpkg "github.com/stripe/stripe-go/v82/product"
	subscriptionpkg "github.com/stripe/stripe-go/v82/subscription"
)

var ErrNoBillingCustomer = errors.New("no billing customer on file")

// Fixed $1/month premium plan terms.
const (
	premiumPlanName        = "Premium Plan"
	premiumPlanAmountCents = 100
)

// BillingService wraps the payments provider. The provider is
// authoritative on subscription and payment status.
type BillingService interface {
	EnsureCustomer(ctx context.Context, user *model.User) (string, error)
	// CreateSubscription creates an incomplete $1/month subscription and
	// returns its id with the client secret needed to complete payment.
	CreateSubscription(ctx context.Context, user *model.User) (*model.SubscriptionCheckout, error)
	SubscriptionStatus(ctx context.Context, subscriptionID string) (*model.SubscriptionState, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*model.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*model.PaymentIntent, error)
}

// StripeService manages the Stripe integration.
type StripeService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewStripeService initializes the Stripe key and returns the service
// with a scoped logger.
func NewStripeService(cfg *config.Config, userRepo repository.UserRepository, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, userRepo: userRepo, logger: lg}
}

// EnsureCustomer returns the user's Stripe customer id, creating and
// persisting one when missing.
func (s *StripeService) EnsureCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	params := &stripe.CustomerParams{
		Email:    stripe.String(user.Email),
		Name:     stripe.String(name),
		Metadata: map[string]string{"user_id": user.ID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.userRepo.UpdateStripeCustomerID(ctx, user.ID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to store stripe customer id")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateSubscription creates the premium product, a $1/month price and an
// incomplete subscription for the user, persisting the billing ids.
func (s *StripeService) CreateSubscription(ctx context.Context, user *model.User) (*model.SubscriptionCheckout, error) {
	customerID, err := s.EnsureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	prod, err := productpkg.New(&stripe.ProductParams{Name: stripe.String(premiumPlanName)})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create Stripe product")
		return nil, fmt.Errorf("create stripe product: %w", err)
	}
	price, err := pricepkg.New(&stripe.PriceParams{
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		UnitAmount: stripe.Int64(premiumPlanAmountCents),
		Recurring:  &stripe.PriceRecurringParams{Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth))},
		Product:    stripe.String(prod.ID),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create Stripe price")
		return nil, fmt.Errorf("create stripe price: %w", err)
	}

	subParams := &stripe.SubscriptionParams{
		Customer:        stripe.String(customerID),
		Items:           []*stripe.SubscriptionItemsParams{{Price: stripe.String(price.ID)}},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
		Metadata: map[string]string{"user_id": user.ID},
	}
	subParams.AddExpand("latest_invoice.confirmation_secret")
	sub, err := subscriptionpkg.New(subParams)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create Stripe subscription")
		return nil, fmt.Errorf("create stripe subscription: %w", err)
	}
	if sub.LatestInvoice == nil || sub.LatestInvoice.ConfirmationSecret == nil {
		return nil, fmt.Errorf("stripe did not return a confirmation secret for subscription %s", sub.ID)
	}

	if err := s.userRepo.UpdateStripeInfo(ctx, user.ID, customerID, sub.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to store stripe subscription info")
		return nil, fmt.Errorf("store stripe subscription info: %w", err)
	}

	return &model.SubscriptionCheckout{
		SubscriptionID: sub.ID,
		ClientSecret:   sub.LatestInvoice.ConfirmationSecret.ClientSecret,
	}, nil
}

// SubscriptionStatus retrieves the authoritative subscription state.
func (s *StripeService) SubscriptionStatus(ctx context.Context, subscriptionID string) (*model.SubscriptionState, error) {
	sub, err := subscriptionpkg.Get(subscriptionID, nil)
	if err != nil {
		s.logger.Error().Err(err).Str("subscription_id", subscriptionID).Msg("Failed to retrieve Stripe subscription")
		return nil, fmt.Errorf("retrieve stripe subscription: %w", err)
	}

	state := &model.SubscriptionState{
		Status:          string(sub.Status),
		NextBillingDate: time.Unix(sub.BillingCycleAnchor, 0),
	}
	// Period timing lives on the subscription item.
	if len(sub.Items.Data) > 0 {
		state.CurrentPeriodEnd = time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0)
	}
	return state, nil
}

// CreatePortalSession creates a customer self-service portal session and
// returns its URL.
func (s *StripeService) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.cfg.AppBaseURL),
	}
	sess, err := billingsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID).Msg("Failed to create Stripe billing portal session")
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// CreatePaymentIntent creates a one-off USD payment intent.
func (s *StripeService) CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Metadata: metadata,
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		s.logger.Error().Err(err).Int64("amount_cents", amountCents).Msg("Failed to create payment intent")
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &model.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// GetPaymentIntent retrieves a payment intent's current state.
func (s *StripeService) GetPaymentIntent(ctx context.Context, id string) (*model.PaymentIntent, error) {
	pi, err := paymentintent.Get(id, nil)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_intent_id", id).Msg("Failed to retrieve payment intent")
		return nil, fmt.Errorf("retrieve payment intent: %w", err)
	}
	return &model.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}
