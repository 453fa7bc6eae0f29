package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog"
)

var ErrNoSession = errors.New("no session")

const (
	sessionCookieName = "postcard_session"
	sessionTTL        = 7 * 24 * time.Hour
)

// SessionService manages server-side sessions. The cookie carries only
// the signed session id; the identity payload lives in the sessions table.
type SessionService interface {
	Issue(ctx context.Context, w http.ResponseWriter, identity *model.Identity) error
	// Identify resolves the request's session to an identity. Returns
	// ErrNoSession for missing, tampered or expired sessions.
	Identify(ctx context.Context, r *http.Request) (*model.Identity, error)
	Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type sessionService struct {
	repo   repository.SessionRepository
	codec  *securecookie.SecureCookie
	secure bool
	logger zerolog.Logger
}

// NewSessionService creates a SessionService signing cookies with the
// given secret. Cookies are marked Secure outside development.
func NewSessionService(repo repository.SessionRepository, secret string, secure bool, logger zerolog.Logger) SessionService {
	codec := securecookie.New([]byte(secret), nil)
	codec.MaxAge(int(sessionTTL.Seconds()))
	return &sessionService{
		repo:   repo,
		codec:  codec,
		secure: secure,
		logger: logger.With().Str("service", "SessionService").Logger(),
	}
}

func (s *sessionService) Issue(ctx context.Context, w http.ResponseWriter, identity *model.Identity) error {
	sess := &model.Session{
		SID:      uuid.NewString(),
		Identity: *identity,
		Expire:   time.Now().Add(sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		s.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to persist session")
		return err
	}
	encoded, err := s.codec.Encode(sessionCookieName, sess.SID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *sessionService) Identify(ctx context.Context, r *http.Request) (*model.Identity, error) {
	sid, err := s.sidFromRequest(r)
	if err != nil {
		return nil, err
	}
	sess, err := s.repo.GetSession(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	return &sess.Identity, nil
}

func (s *sessionService) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if sid, err := s.sidFromRequest(r); err == nil {
		if err := s.repo.DeleteSession(ctx, sid); err != nil {
			s.logger.Error().Err(err).Msg("Failed to delete session row")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *sessionService) sidFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", ErrNoSession
	}
	var sid string
	if err := s.codec.Decode(sessionCookieName, cookie.Value, &sid); err != nil {
		return "", ErrNoSession
	}
	return sid, nil
}
