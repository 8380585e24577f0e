package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masembe/momopay-backend/internal/models"
)

type ordersRepo struct{ pool *pgxpool.Pool }

const orderCols = `id, user_id, amount, currency, status, payment_id, payment_provider, payment_status, created_at, updated_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Amount, &o.Currency, &o.Status,
		&o.Payment.ID, &o.Payment.Provider, &o.Payment.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *ordersRepo) Create(ctx context.Context, o models.Order) (models.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	const q = `
INSERT INTO orders (
  id, user_id, amount, currency, status, payment_id, payment_provider, payment_status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + orderCols
	return scanOrder(r.pool.QueryRow(ctx, q,
		o.ID, o.UserID, o.Amount, o.Currency, o.Status,
		o.Payment.ID, o.Payment.Provider, o.Payment.Status,
	))
}

func (r *ordersRepo) GetByID(ctx context.Context, id string) (models.Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
}

func (r *ordersRepo) GetByPaymentID(ctx context.Context, paymentID string) (models.Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE payment_id=$1`, paymentID))
}

func (r *ordersRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderCols+` FROM orders
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ordersRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderCols+` FROM orders
		  WHERE payment_status='pending' AND created_at < $1
		  ORDER BY created_at ASC
		  LIMIT $2`,
		olderThan, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdatePaymentStatus is the idempotency guard: a single conditional UPDATE
// keyed on the expected current status, so a duplicate webhook and a racing
// poll result cannot both apply. Payment status and order status change in
// the same statement; they are never visible independently.
func (r *ordersRepo) UpdatePaymentStatus(ctx context.Context, paymentID string, expected, next models.PaymentStatus, orderStatus models.OrderStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders
		    SET payment_status=$3, status=$4, updated_at=now()
		  WHERE payment_id=$1 AND payment_status=$2`,
		paymentID, expected, next, orderStatus,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
