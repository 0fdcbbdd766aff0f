package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/payment-orchestrator/internal/bootstrap"
	"github.com/cassiomorais/payment-orchestrator/internal/controller"
	infraRedis "github.com/cassiomorais/payment-orchestrator/internal/infrastructure/redis"
	"github.com/cassiomorais/payment-orchestrator/internal/repository/postgres"
	"github.com/cassiomorais/payment-orchestrator/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "payments")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	// --- Repositories ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	credentialRepo := postgres.NewCredentialRepository(app.Pool)
	auditRepo := postgres.NewAuditRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Gateways and orchestration ---
	gateways := bootstrap.NewGatewayRegistry(cfg.Gateway, app.Metrics)
	publisher := infraRedis.NewEventPublisher(app.Redis, cfg.Payment.EventStream, app.Metrics)
	opts := []service.Option{
		service.WithHooks(bootstrap.NewHooks(app.Metrics, publisher, app.Logger)),
		service.WithMetrics(app.Metrics),
		service.WithLogger(app.Logger),
	}
	if cfg.Payment.LockEnabled {
		opts = append(opts, service.WithLocker(infraRedis.NewLocker(app.Redis, cfg.Payment.LockTTL, cfg.Payment.LockWait)))
	}

	paymentService := service.NewPaymentService(paymentRepo, auditRepo, gateways, txManager)
	refundService := service.NewRefundService(paymentRepo, auditRepo, gateways, txManager, opts...)
	credentialService := service.NewCredentialService(
		paymentRepo, credentialRepo, auditRepo, gateways, txManager,
		service.NewEndpoints(cfg.Payment.CallbackBaseURL),
		opts...,
	)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:              app.Pool,
		RedisClient:       app.Redis,
		PaymentService:    paymentService,
		RefundService:     refundService,
		CredentialService: credentialService,
		DefaultGateway:    cfg.Payment.DefaultGateway,
		Metrics:           app.Metrics,
		Logger:            app.Logger,
		ServerConfig:      cfg.Server,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error().Err(err).Msg("Server stopped with error")
		return
	}
	app.Logger.Info().Msg("Server exited")
}
