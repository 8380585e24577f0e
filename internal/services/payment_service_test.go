package services

import (
	"context"
	"errors"
	"testing"

	"github.com/masembe/momopay-backend/internal/models"
	"github.com/masembe/momopay-backend/internal/provider"
	"github.com/shopspring/decimal"
)

type scriptedAdapter struct {
	name     models.Provider
	ref      string
	initErr  error
	statuses map[string]models.PaymentStatus
}

func (a *scriptedAdapter) Name() models.Provider { return a.name }

func (a *scriptedAdapter) Initiate(ctx context.Context, phone string, amount decimal.Decimal, currency string) (string, error) {
	if a.initErr != nil {
		return "", a.initErr
	}
	return a.ref, nil
}

func (a *scriptedAdapter) CheckStatus(ctx context.Context, reference string) (models.PaymentStatus, error) {
	if s, ok := a.statuses[reference]; ok {
		return s, nil
	}
	return models.PaymentPending, nil
}

func (a *scriptedAdapter) NormalizeStatus(raw string) models.PaymentStatus {
	return models.PaymentPending
}

func TestCheckoutPersistsPendingOrder(t *testing.T) {
	orders := newFakeOrders()
	gw := provider.NewGateway(&scriptedAdapter{name: models.ProviderMTN, ref: "ref-1"})
	svc := NewPaymentService(orders, gw)

	order, err := svc.Checkout(context.Background(), "user-1", models.ProviderMTN, "0772123456", decimal.NewFromInt(5000), "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if order.Payment.ID != "ref-1" || order.Payment.Status != models.PaymentPending {
		t.Errorf("payment = %+v", order.Payment)
	}
	if order.Currency != "UGX" {
		t.Errorf("currency = %q, want default UGX", order.Currency)
	}
	if order.Status != models.OrderPending {
		t.Errorf("order status = %s", order.Status)
	}

	if _, err := orders.GetByPaymentID(context.Background(), "ref-1"); err != nil {
		t.Errorf("order not persisted: %v", err)
	}
}

func TestCheckoutInitiationFailurePersistsNothing(t *testing.T) {
	orders := newFakeOrders()
	gw := provider.NewGateway(&scriptedAdapter{
		name:    models.ProviderAirtel,
		initErr: &provider.InitiationError{Provider: models.ProviderAirtel, Detail: "declined"},
	})
	svc := NewPaymentService(orders, gw)

	_, err := svc.Checkout(context.Background(), "user-1", models.ProviderAirtel, "0701987654", decimal.NewFromInt(5000), "UGX")
	var ie *provider.InitiationError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InitiationError", err)
	}
	if n := len(orders.byPayment); n != 0 {
		t.Errorf("persisted orders = %d, want 0", n)
	}
}

func TestCheckoutValidation(t *testing.T) {
	svc := NewPaymentService(newFakeOrders(), provider.NewGateway(&scriptedAdapter{name: models.ProviderMTN, ref: "r"}))

	cases := []struct {
		name   string
		phone  string
		amount decimal.Decimal
	}{
		{"empty phone", "", decimal.NewFromInt(100)},
		{"bad phone", "12345", decimal.NewFromInt(100)},
		{"zero amount", "0772123456", decimal.Zero},
		{"negative amount", "0772123456", decimal.NewFromInt(-5)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), "user-1", models.ProviderMTN, c.phone, c.amount, "UGX")
			if err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCheckoutUnsupportedProvider(t *testing.T) {
	svc := NewPaymentService(newFakeOrders(), provider.NewGateway())

	_, err := svc.Checkout(context.Background(), "user-1", models.Provider("mpesa"), "0772123456", decimal.NewFromInt(100), "UGX")
	if !errors.Is(err, provider.ErrUnsupportedProvider) {
		t.Fatalf("err = %v, want ErrUnsupportedProvider", err)
	}
}
