package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"app/internal/model"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, s *model.Session) error
	// GetSession returns nil for missing or expired sessions; expired
	// rows are deleted on read.
	GetSession(ctx context.Context, sid string) (*model.Session, error)
	DeleteSession(ctx context.Context, sid string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type sessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) CreateSession(ctx context.Context, s *model.Session) error {
	payload, err := json.Marshal(s.Identity)
	if err != nil {
		return err
	}
	query := `INSERT INTO sessions (sid, sess, expire) VALUES ($1, $2, $3)`
	_, err = r.db.ExecContext(ctx, query, s.SID, payload, s.Expire)
	return err
}

func (r *sessionRepo) GetSession(ctx context.Context, sid string) (*model.Session, error) {
	var s model.Session
	var payload []byte
	query := `SELECT sid, sess, expire FROM sessions WHERE sid = $1`
	row := r.db.QueryRowContext(ctx, query, sid)
	if err := row.Scan(&s.SID, &payload, &s.Expire); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if s.Expire.Before(time.Now()) {
		_ = r.DeleteSession(ctx, sid)
		return nil, nil
	}
	if err := json.Unmarshal(payload, &s.Identity); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) DeleteSession(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE sid = $1`, sid)
	return err
}

func (r *sessionRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expire < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
