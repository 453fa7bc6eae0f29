package service

import (
	"context"
	"fmt"
	"time"

	"app/internal/config"
	"app/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const stateTokenTTL = 10 * time.Minute

// IdentityService exchanges an OAuth callback for a stable external
// identity. It holds no state of its own.
type IdentityService interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*model.Identity, error)
	// NewStateToken mints a signed anti-CSRF state parameter for the
	// OAuth redirect; VerifyStateToken checks it on callback.
	NewStateToken() (string, error)
	VerifyStateToken(token string) error
}

type googleIdentityService struct {
	conf        *oauth2.Config
	stateSecret []byte
	logger      zerolog.Logger
}

func NewGoogleIdentityService(cfg *config.Config, logger zerolog.Logger) IdentityService {
	conf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}
	return &googleIdentityService{
		conf:        conf,
		stateSecret: []byte(cfg.SessionSecret),
		logger:      logger.With().Str("service", "IdentityService").Logger(),
	}
}

func (s *googleIdentityService) AuthURL(state string) string {
	return s.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (s *googleIdentityService) Exchange(ctx context.Context, code string) (*model.Identity, error) {
	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth code exchange failed")
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(s.conf.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch userinfo")
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Id == "" {
		return nil, fmt.Errorf("identity provider returned empty subject id")
	}

	return &model.Identity{
		UserID:          info.Id,
		Email:           info.Email,
		FirstName:       info.GivenName,
		LastName:        info.FamilyName,
		ProfileImageURL: info.Picture,
	}, nil
}

func (s *googleIdentityService) NewStateToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "oauth-state",
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateSecret)
}

func (s *googleIdentityService) VerifyStateToken(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.stateSecret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid state token: %w", err)
	}
	if sub, _ := parsed.Claims.GetSubject(); sub != "oauth-state" {
		return fmt.Errorf("invalid state token subject")
	}
	return nil
}
