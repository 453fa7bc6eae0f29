package repository

import (
	"context"
	"database/sql"
	"errors"

	"app/internal/model"

	"github.com/rs/zerolog"
)

type PostcardRepository interface {
	CreatePostcard(ctx context.Context, p *model.Postcard) error
	GetPostcardByID(ctx context.Context, id string) (*model.Postcard, error)
	GetPostcardsByUserID(ctx context.Context, userID string) ([]model.Postcard, error)
	DeletePostcard(ctx context.Context, id string) error
}

type postcardRepo struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostcardRepo(db *sql.DB, logger zerolog.Logger) PostcardRepository {
	return &postcardRepo{db: db, logger: logger.With().Str("repository", "PostcardRepository").Logger()}
}

func (r *postcardRepo) CreatePostcard(ctx context.Context, p *model.Postcard) error {
	query := `INSERT INTO postcards (id, user_id, image_path, title, description, is_public)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.ImagePath, p.Title, p.Description, p.IsPublic,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", p.UserID).Msg("Failed to insert postcard")
		return err
	}
	return nil
}

func (r *postcardRepo) GetPostcardByID(ctx context.Context, id string) (*model.Postcard, error) {
	var p model.Postcard
	var description sql.NullString
	query := `SELECT id, user_id, image_path, title, description, is_public, created_at, updated_at
              FROM postcards WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.UserID, &p.ImagePath, &p.Title, &description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Description = description.String
	return &p, nil
}

func (r *postcardRepo) GetPostcardsByUserID(ctx context.Context, userID string) ([]model.Postcard, error) {
	query := `SELECT id, user_id, image_path, title, description, is_public, created_at, updated_at
              FROM postcards WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postcards []model.Postcard
	for rows.Next() {
		var p model.Postcard
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.ImagePath, &p.Title, &description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Description = description.String
		postcards = append(postcards, p)
	}
	return postcards, rows.Err()
}

func (r *postcardRepo) DeletePostcard(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM postcards WHERE id = $1`, id)
	return err
}
