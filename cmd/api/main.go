package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/masembe/momopay-backend/internal/api"
	"github.com/masembe/momopay-backend/internal/auth"
	"github.com/masembe/momopay-backend/internal/config"
	"github.com/masembe/momopay-backend/internal/db"
	"github.com/masembe/momopay-backend/internal/logger"
	"github.com/masembe/momopay-backend/internal/metrics"
	"github.com/masembe/momopay-backend/internal/middleware"
	"github.com/masembe/momopay-backend/internal/provider"
	"github.com/masembe/momopay-backend/internal/repository/postgres"
	"github.com/masembe/momopay-backend/internal/services"
	"github.com/masembe/momopay-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)

	tokens := provider.NewTokenStore()
	gateway := provider.NewGateway(
		provider.NewMTNAdapter(cfg.MTN, tokens, cfg.ProviderTimeout),
		provider.NewAirtelAdapter(cfg.Airtel, tokens, cfg.ProviderTimeout),
	)

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, 15*time.Minute, 7*24*time.Hour)
	userSvc := services.NewUserService(repos.Users, tm)
	paySvc := services.NewPaymentService(repos.Orders, gateway)
	reconcileSvc := services.NewReconcileService(repos.Orders, repos.AuditLogs, gateway)

	metrics.Init()

	wp := worker.NewPool(4)
	poller := worker.NewPoller(repos.Orders, gateway, reconcileSvc, wp, cfg.PollInterval, cfg.PendingSLA, cfg.PollBatch)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	r := api.NewRouter(api.RouterDeps{
		Cfg:        cfg,
		UserSvc:    userSvc,
		PaymentSvc: paySvc,
		Reconcile:  reconcileSvc,
		AuthMW:     middleware.NewAuthMiddleware(tm),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	// the poller is the only submitter; it must return before the pool's
	// job channel closes
	<-pollerDone
	wp.Stop()
}
