package repository

import (
	"app/internal/model"
	"context"
	"database/sql"
	"errors"
	"time"
)

type UserRepository interface {
	// UpsertUser creates the user on first login and refreshes profile
	// fields on subsequent logins. Billing columns are left untouched.
	UpsertUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateStripeInfo(ctx context.Context, userID, customerID, subscriptionID string) error
	UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error
	UpdateSubscriptionStatus(ctx context.Context, userID, status string, endDate *time.Time) error
}

type userRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) UpsertUser(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (id, email, first_name, last_name, profile_image_url, subscription_status)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (id) DO UPDATE
              SET email = EXCLUDED.email,
                  first_name = EXCLUDED.first_name,
                  last_name = EXCLUDED.last_name,
                  profile_image_url = EXCLUDED.profile_image_url,
                  updated_at = NOW()
              RETURNING subscription_status, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL, model.SubscriptionStatusInactive,
	).Scan(&u.SubscriptionStatus, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	query := `SELECT id, email, first_name, last_name, profile_image_url,
                     stripe_customer_id, stripe_subscription_id,
                     subscription_status, subscription_end_date, created_at, updated_at
              FROM users WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL,
		&u.StripeCustomerID, &u.StripeSubscriptionID,
		&u.SubscriptionStatus, &u.SubscriptionEndDate, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateStripeInfo(ctx context.Context, userID, customerID, subscriptionID string) error {
	query := `UPDATE users
              SET stripe_customer_id = $2, stripe_subscription_id = $3, updated_at = NOW()
              WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, customerID, subscriptionID)
	return err
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	query := `UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, customerID)
	return err
}

func (r *userRepo) UpdateSubscriptionStatus(ctx context.Context, userID, status string, endDate *time.Time) error {
	query := `UPDATE users
              SET subscription_status = $2, subscription_end_date = $3, updated_at = NOW()
              WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, status, endDate)
	return err
}
