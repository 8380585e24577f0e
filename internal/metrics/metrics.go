package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// payment initiation
	PaymentsInitiated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Payments successfully initiated with a provider",
		},
		[]string{"provider"},
	)
	PaymentInitFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_initiation_failed_total",
			Help: "Payment initiations rejected by or unreachable at the provider",
		},
		[]string{"provider"},
	)

	// webhook intake
	WebhooksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Inbound provider webhook deliveries",
		},
		[]string{"provider", "result"}, // applied|duplicate|unknown_ref|pending|malformed
	)

	// reconciliation transitions
	TransitionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_transitions_total",
			Help: "Terminal payment transitions applied to orders",
		},
		[]string{"provider", "status", "source"}, // source: webhook|poll
	)

	PollChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_poll_checks_total",
			Help: "Active provider status checks performed by the poller",
		},
		[]string{"provider", "outcome"}, // terminal|pending|error
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// handler for the /metrics endpoint
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(PaymentsInitiated)
	prometheus.MustRegister(PaymentInitFailed)
	prometheus.MustRegister(WebhooksReceived)
	prometheus.MustRegister(TransitionsApplied)
	prometheus.MustRegister(PollChecks)
	prometheus.MustRegister(WorkerQueueDepth)
}
