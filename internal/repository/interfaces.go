package repository

import (
	"context"
	"time"

	"github.com/masembe/momopay-backend/internal/models"
)

type Users interface {
	Create(username, email, passwordHash, role string) (models.User, error)
	GetByID(id string) (models.User, error)
	GetByEmail(email string) (models.User, error)
	List() ([]models.User, error)
}

type Orders interface {
	Create(ctx context.Context, o models.Order) (models.Order, error)
	GetByID(ctx context.Context, id string) (models.Order, error)
	// GetByPaymentID looks an order up by its payment reference, the sole
	// join key between a provider-side transaction and the local order.
	GetByPaymentID(ctx context.Context, paymentID string) (models.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error)
	// ListStalePending returns orders whose payment has sat in pending since
	// before the cutoff, oldest first.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Order, error)

	// UpdatePaymentStatus applies payment and order status in one atomic
	// conditional update keyed on the expected current payment status.
	// Returns false without error when the row was not in the expected
	// state (duplicate or late delivery).
	UpdatePaymentStatus(ctx context.Context, paymentID string, expected, next models.PaymentStatus, orderStatus models.OrderStatus) (bool, error)
}

type AuditLogs interface {
	Create(l models.AuditLog) error
}
