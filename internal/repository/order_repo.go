package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"app/internal/model"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *model.PostcardOrder) error
	GetOrderByID(ctx context.Context, id string) (*model.PostcardOrder, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]model.PostcardOrder, error)
	// GetPendingOrderByPostcard returns the open pending order for
	// (user, postcard), or nil when there is none.
	GetPendingOrderByPostcard(ctx context.Context, userID, postcardID string) (*model.PostcardOrder, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, user_id, postcard_id, quantity, total_amount,
       stripe_payment_intent_id, order_status, shipping_address, created_at, updated_at`

func (r *orderRepo) CreateOrder(ctx context.Context, o *model.PostcardOrder) error {
	var shipping []byte
	if o.ShippingAddress != nil {
		var err error
		shipping, err = json.Marshal(o.ShippingAddress)
		if err != nil {
			return fmt.Errorf("marshal shipping address: %w", err)
		}
	}
	query := `INSERT INTO postcard_orders
              (id, user_id, postcard_id, quantity, total_amount, stripe_payment_intent_id, order_status, shipping_address)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		o.ID, o.UserID, o.PostcardID, o.Quantity, o.TotalAmount,
		o.StripePaymentIntentID, o.OrderStatus, shipping,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepo) GetOrderByID(ctx context.Context, id string) (*model.PostcardOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM postcard_orders WHERE id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *orderRepo) GetPendingOrderByPostcard(ctx context.Context, userID, postcardID string) (*model.PostcardOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM postcard_orders
              WHERE user_id = $1 AND postcard_id = $2 AND order_status = $3`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, userID, postcardID, model.OrderStatusPending))
}

func (r *orderRepo) GetOrdersByUserID(ctx context.Context, userID string) ([]model.PostcardOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM postcard_orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.PostcardOrder
	for rows.Next() {
		o, err := scanOrderFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) UpdateOrderStatus(ctx context.Context, id, status string) error {
	query := `UPDATE postcard_orders SET order_status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *orderRepo) scanOrder(row *sql.Row) (*model.PostcardOrder, error) {
	o, err := scanOrderFields(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func scanOrderFields(scan func(...any) error) (*model.PostcardOrder, error) {
	var o model.PostcardOrder
	var shipping []byte
	if err := scan(&o.ID, &o.UserID, &o.PostcardID, &o.Quantity, &o.TotalAmount,
		&o.StripePaymentIntentID, &o.OrderStatus, &shipping, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if len(shipping) > 0 {
		var addr model.ShippingAddress
		if err := json.Unmarshal(shipping, &addr); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
		o.ShippingAddress = &addr
	}
	return &o, nil
}
