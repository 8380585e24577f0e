package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/masembe/momopay-backend/internal/metrics"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/masembe/momopay-backend/internal/provider"
	repo "github.com/masembe/momopay-backend/internal/repository"
)

// EventSource identifies which feed observed a status change.
type EventSource string

const (
	SourceWebhook EventSource = "webhook"
	SourcePoll    EventSource = "poll"
)

// StatusEvent is one asynchronous status observation for a transaction,
// carrying the provider's raw status string.
type StatusEvent struct {
	Provider  models.Provider
	Reference string
	RawStatus string
	Source    EventSource
}

// Outcome of applying a status event.
type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeDuplicate  Outcome = "duplicate"   // record already terminal
	OutcomeUnknownRef Outcome = "unknown_ref" // no order carries the reference
	OutcomePending    Outcome = "pending"     // event carried no terminal status
)

// ReconcileService merges asynchronous provider status signals into the
// authoritative local order state exactly once.
type ReconcileService struct {
	orders  repo.Orders
	logs    repo.AuditLogs
	gateway *provider.Gateway
}

func NewReconcileService(orders repo.Orders, logs repo.AuditLogs, gw *provider.Gateway) *ReconcileService {
	return &ReconcileService{orders: orders, logs: logs, gateway: gw}
}

// Apply normalizes the event through the provider's vocabulary mapping and
// applies the pending→terminal transition. Duplicates, unknown references and
// non-terminal statuses are no-ops, not errors: webhook senders retry on any
// failure response, so only genuine internal faults may error.
func (s *ReconcileService) Apply(ctx context.Context, ev StatusEvent) (Outcome, error) {
	status, err := s.gateway.NormalizeStatus(ev.Provider, ev.RawStatus)
	if err != nil {
		return "", err
	}
	return s.ApplyNormalized(ctx, ev.Provider, ev.Reference, status, ev.Source)
}

// ApplyNormalized applies an already-normalized status observation, e.g. a
// poll result. The transition is a single conditional update keyed on the
// current pending status: whichever source observes a terminal status first
// wins, and once terminal the local record is authoritative.
func (s *ReconcileService) ApplyNormalized(ctx context.Context, p models.Provider, reference string, status models.PaymentStatus, source EventSource) (Outcome, error) {
	if status == models.PaymentPending {
		return OutcomePending, nil
	}

	o, err := s.orders.GetByPaymentID(ctx, reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("status event for unknown reference", "provider", p, "reference", reference, "source", source)
			return OutcomeUnknownRef, nil
		}
		return "", err
	}
	if !models.CanTransition(o.Payment.Status, status) {
		// already terminal; the conditional update below would also refuse,
		// this just skips the write for the common duplicate case
		return OutcomeDuplicate, nil
	}

	applied, err := s.orders.UpdatePaymentStatus(ctx, reference, models.PaymentPending, status, models.OrderStatusFor(status))
	if err != nil {
		return "", err
	}
	if !applied {
		// already terminal; a duplicate webhook or the losing side of a
		// webhook/poll race
		return OutcomeDuplicate, nil
	}

	metrics.TransitionsApplied.WithLabelValues(string(p), string(status), string(source)).Inc()
	s.audit(p, reference, status, source)
	slog.Info("payment transition applied",
		"provider", p, "reference", reference, "status", status, "source", source)
	return OutcomeApplied, nil
}

// audit is best effort; the transition already committed, so a failed write
// is logged rather than propagated.
func (s *ReconcileService) audit(p models.Provider, reference string, status models.PaymentStatus, source EventSource) {
	ref := reference
	err := s.logs.Create(models.AuditLog{
		EntityType: "order_payment",
		EntityID:   &ref,
		Action:     "status_change",
		Details: map[string]any{
			"provider": string(p),
			"source":   string(source),
			"status":   string(status),
		},
	})
	if err != nil {
		slog.Warn("audit write failed", "reference", reference, "err", err)
	}
}
