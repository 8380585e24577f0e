package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/masembe/momopay-backend/internal/api/handlers"
	"github.com/masembe/momopay-backend/internal/config"
	"github.com/masembe/momopay-backend/internal/metrics"
	"github.com/masembe/momopay-backend/internal/middleware"
	"github.com/masembe/momopay-backend/internal/services"
)

type RouterDeps struct {
	Cfg        config.Config
	UserSvc    *services.UserService
	PaymentSvc *services.PaymentService
	Reconcile  *services.ReconcileService
	AuthMW     *middleware.AuthMiddleware
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	authH := handlers.NewAuthHandler(d.UserSvc)
	payH := handlers.NewPaymentHandler(d.PaymentSvc)
	hookH := handlers.NewWebhookHandler(d.Reconcile)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(d.AuthMW.Auth)
			r.Post("/payments", payH.Pay)
			r.Get("/orders", payH.ListOrders)
			r.Get("/orders/{id}", payH.GetOrder)
			r.Get("/users", authH.ListUsers)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.With(middleware.VerifySignature(d.Cfg.MTN.WebhookSecret)).
				Post("/mtn", hookH.MTN)
			r.With(middleware.VerifySignature(d.Cfg.Airtel.WebhookSecret)).
				Post("/airtel", hookH.Airtel)
		})
	})

	return r
}
