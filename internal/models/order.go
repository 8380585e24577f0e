package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Provider string

const (
	ProviderMTN    Provider = "mtn"
	ProviderAirtel Provider = "airtel"
)

func (p Provider) Valid() bool {
	return p == ProviderMTN || p == ProviderAirtel
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// CanTransition reports whether from→to is a legal payment transition.
// succeeded and failed are terminal.
func CanTransition(from, to PaymentStatus) bool {
	if from != PaymentPending {
		return false
	}
	return to == PaymentSucceeded || to == PaymentFailed
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderFailed     OrderStatus = "Failed"
)

// OrderStatusFor maps a terminal payment status to the order status applied
// in the same update.
func OrderStatusFor(s PaymentStatus) OrderStatus {
	switch s {
	case PaymentSucceeded:
		return OrderProcessing
	case PaymentFailed:
		return OrderFailed
	default:
		return OrderPending
	}
}

// PaymentInfo is the payment slice of an order. ID is the provider-facing
// transaction reference generated once at initiation; it is the only join key
// between provider callbacks and the local order.
type PaymentInfo struct {
	ID       string        `json:"id"`
	Provider Provider      `json:"provider"`
	Status   PaymentStatus `json:"status"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    OrderStatus     `json:"status"`
	Payment   PaymentInfo     `json:"payment"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
