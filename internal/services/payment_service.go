package services

import (
	"context"
	"log/slog"

	"github.com/masembe/momopay-backend/internal/api/validate"
	"github.com/masembe/momopay-backend/internal/metrics"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/masembe/momopay-backend/internal/provider"
	repo "github.com/masembe/momopay-backend/internal/repository"
	"github.com/shopspring/decimal"
)

// PaymentService drives order placement: it requests payment through the
// gateway facade and persists the order with the pending payment record.
type PaymentService struct {
	orders  repo.Orders
	gateway *provider.Gateway
}

func NewPaymentService(orders repo.Orders, gw *provider.Gateway) *PaymentService {
	return &PaymentService{orders: orders, gateway: gw}
}

// Checkout validates the request, initiates payment with the provider and,
// only if initiation succeeded, persists the order. On any initiation failure
// nothing is written; the generated reference is discarded with it.
func (s *PaymentService) Checkout(ctx context.Context, userID string, p models.Provider, phone string, amount decimal.Decimal, currency string) (models.Order, error) {
	var errs validate.Errs
	if e := validate.Required("phone_number", phone); e != nil {
		errs = append(errs, *e)
	} else if e := validate.Phone("phone_number", phone); e != nil {
		errs = append(errs, *e)
	}
	if !amount.IsPositive() {
		errs = append(errs, validate.ErrField{Field: "amount", Msg: "must be > 0"})
	}
	if currency == "" {
		currency = "UGX"
	}
	if len(errs) > 0 {
		return models.Order{}, errs
	}

	payment, err := s.gateway.Pay(ctx, p, phone, amount, currency)
	if err != nil {
		metrics.PaymentInitFailed.WithLabelValues(string(p)).Inc()
		return models.Order{}, err
	}

	order := models.Order{
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		Status:   models.OrderPending,
		Payment:  payment,
	}
	order, err = s.orders.Create(ctx, order)
	if err != nil {
		// the provider call already went out; the poller will never pick
		// this reference up, so surface the persistence failure loudly
		slog.Error("order persist after initiation", "provider", p, "payment_id", payment.ID, "err", err)
		return models.Order{}, err
	}

	metrics.PaymentsInitiated.WithLabelValues(string(p)).Inc()
	slog.Info("payment initiated", "provider", p, "payment_id", payment.ID, "order_id", order.ID)
	return order, nil
}

func (s *PaymentService) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *PaymentService) ListOrdersByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}
