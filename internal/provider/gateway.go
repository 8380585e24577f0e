package provider

import (
	"context"
	"fmt"

	"github.com/masembe/momopay-backend/internal/models"
	"github.com/shopspring/decimal"
)

// Gateway routes payment calls to the adapter matching the provider tag.
// It is the sole entry point used by order placement.
type Gateway struct {
	adapters map[models.Provider]Adapter
}

func NewGateway(adapters ...Adapter) *Gateway {
	g := &Gateway{adapters: make(map[models.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		g.adapters[a.Name()] = a
	}
	return g
}

// Adapter returns the adapter for a provider tag.
func (g *Gateway) Adapter(p models.Provider) (Adapter, error) {
	a, ok := g.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, p)
	}
	return a, nil
}

// Pay initiates a payment with the given provider and returns the pending
// payment record to fold into the order.
func (g *Gateway) Pay(ctx context.Context, p models.Provider, phone string, amount decimal.Decimal, currency string) (models.PaymentInfo, error) {
	a, err := g.Adapter(p)
	if err != nil {
		return models.PaymentInfo{}, err
	}
	ref, err := a.Initiate(ctx, phone, amount, currency)
	if err != nil {
		return models.PaymentInfo{}, err
	}
	return models.PaymentInfo{ID: ref, Provider: p, Status: models.PaymentPending}, nil
}

// NormalizeStatus runs a raw provider status through the matching adapter's
// vocabulary mapping.
func (g *Gateway) NormalizeStatus(p models.Provider, raw string) (models.PaymentStatus, error) {
	a, err := g.Adapter(p)
	if err != nil {
		return "", err
	}
	return a.NormalizeStatus(raw), nil
}
