package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/masembe/momopay-backend/internal/metrics"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/masembe/momopay-backend/internal/provider"
	repo "github.com/masembe/momopay-backend/internal/repository"
	"github.com/masembe/momopay-backend/internal/services"
)

// Poller actively checks provider status for payments stuck in pending
// longer than the SLA. It covers providers that drop webhook delivery; its
// results go through the same idempotent transition as webhooks, so a poll
// racing a late webhook is safe.
type Poller struct {
	orders    repo.Orders
	gateway   *provider.Gateway
	reconcile *services.ReconcileService
	pool      *Pool

	interval time.Duration
	sla      time.Duration
	batch    int
}

func NewPoller(orders repo.Orders, gw *provider.Gateway, rc *services.ReconcileService, pool *Pool, interval, sla time.Duration, batch int) *Poller {
	return &Poller{
		orders:    orders,
		gateway:   gw,
		reconcile: rc,
		pool:      pool,
		interval:  interval,
		sla:       sla,
		batch:     batch,
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.sweep(ctx)
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-p.sla)
	orders, err := p.orders.ListStalePending(ctx, cutoff, p.batch)
	if err != nil {
		slog.Error("poller list pending", "err", err)
		return
	}
	for _, o := range orders {
		o := o
		p.pool.Submit(func() { p.check(ctx, o) })
	}
}

func (p *Poller) check(ctx context.Context, o models.Order) {
	adapter, err := p.gateway.Adapter(o.Payment.Provider)
	if err != nil {
		slog.Error("poller adapter lookup", "provider", o.Payment.Provider, "err", err)
		return
	}

	status, err := adapter.CheckStatus(ctx, o.Payment.ID)
	if err != nil {
		// unknown, not failed; the payment stays pending for the next sweep
		metrics.PollChecks.WithLabelValues(string(o.Payment.Provider), "error").Inc()
		slog.Warn("status check", "provider", o.Payment.Provider, "reference", o.Payment.ID, "err", err)
		return
	}
	if status == models.PaymentPending {
		metrics.PollChecks.WithLabelValues(string(o.Payment.Provider), "pending").Inc()
		return
	}

	metrics.PollChecks.WithLabelValues(string(o.Payment.Provider), "terminal").Inc()
	if _, err := p.reconcile.ApplyNormalized(ctx, o.Payment.Provider, o.Payment.ID, status, services.SourcePoll); err != nil {
		slog.Error("poll transition", "provider", o.Payment.Provider, "reference", o.Payment.ID, "err", err)
	}
}
