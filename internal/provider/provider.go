package provider

import (
	"context"
	"strings"

	"github.com/masembe/momopay-backend/internal/models"
	"github.com/shopspring/decimal"
)

// Adapter is the uniform capability set every mobile-money provider exposes.
// One implementation per provider; shared logic never branches on the tag.
type Adapter interface {
	Name() models.Provider

	// Initiate submits a fire-and-forget request-to-pay and returns the
	// transaction reference generated for it. The reference is only
	// meaningful if the call succeeds.
	Initiate(ctx context.Context, phone string, amount decimal.Decimal, currency string) (string, error)

	// CheckStatus queries the provider's status endpoint for the given
	// reference and returns the normalized status.
	CheckStatus(ctx context.Context, reference string) (models.PaymentStatus, error)

	// NormalizeStatus maps a raw provider status string into the local
	// three-state vocabulary. Unrecognized values map to pending.
	NormalizeStatus(raw string) models.PaymentStatus
}

// normalizePhone converts a local Ugandan number (07XX...) to the
// international form providers expect (2567XX...).
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "0") {
		return "256" + phone[1:]
	}
	return phone
}
