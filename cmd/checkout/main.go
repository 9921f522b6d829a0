package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/application/services"
	"github.com/elorajewelry/checkout-service/internal/config"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/comgate"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/mail"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/persistence/memory"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/persistence/postgres"
	"github.com/elorajewelry/checkout-service/internal/interfaces/rest/handlers"
	"github.com/elorajewelry/checkout-service/internal/interfaces/rest/middleware"
	"github.com/elorajewelry/checkout-service/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting checkout service",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"comgate_test", cfg.Comgate.Test,
		"mail_enabled", cfg.Mail.APIKey != "",
	)
	if !cfg.Comgate.Configured() {
		logger.Warn("comgate merchant credentials not set, checkout init will fail until configured")
	}

	ctx := context.Background()

	var orderStore application.OrderStore
	if cfg.Store.Driver == "postgres" {
		db, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		orderStore = postgres.NewOrderRepository(db)
	} else {
		orderStore = memory.NewOrderStore()
	}

	gatewayClient := comgate.NewClient(cfg.Comgate)
	retryGateway := comgate.NewRetryClient(gatewayClient, cfg.Retry)

	notifier := mail.NewResendNotifier(cfg.Mail, logger)

	checkoutService := services.NewCheckoutService(orderStore, retryGateway, cfg.Comgate, cfg.Checkout, logger)
	reconciler := services.NewReconcileService(orderStore, retryGateway, notifier, logger)

	// Status query plus two email sends must fit comfortably.
	dispatcher := worker.NewDispatcher(2*time.Minute, logger)

	h := handlers.NewHandlers(checkoutService, reconciler, dispatcher, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(cfg.Server),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	router.Use(middleware.Timeout(cfg.Server.ReadTimeout))

	router.Get("/health", h.Health)
	router.Post("/api/checkout/init", h.InitCheckout)
	router.Post("/api/comgate/notify", h.Notify)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Let in-flight reconciliations finish before the process goes away.
	if err := dispatcher.Drain(shutdownCtx); err != nil {
		logger.Error("background tasks did not drain in time", "error", err)
	}

	logger.Info("server exited")
}

func corsOrigins(cfg config.ServerConfig) []string {
	if len(cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSOrigins
}
