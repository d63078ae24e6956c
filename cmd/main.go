package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"stripe-payment-gateway/config"
	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/server"
	"stripe-payment-gateway/internal/services/payments/dedupe"
	"stripe-payment-gateway/internal/services/payments/forwarder"
	"stripe-payment-gateway/internal/services/payments/handler"
	"stripe-payment-gateway/internal/services/payments/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Panicf("failed to load config: %v", err)
	}

	logger := obs.NewLogger(cfg.Log.Format, cfg.Log.Level, os.Stdout)
	slog.SetDefault(logger)

	for _, name := range cfg.MissingSecrets() {
		logger.Warn("secret not configured; dependent routes will fail", "env", name)
	}
	if cfg.Gateway.CallbackURL == "" {
		logger.Warn("GATEWAY_CALLBACK_URL not configured; webhook events will not be forwarded")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	stripePaymentProvider := providers.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	deps := handler.Deps{
		Provider:  stripePaymentProvider,
		Forwarder: forwarder.New(cfg.Gateway.CallbackURL, cfg.Gateway.Secret, cfg.Gateway.CallbackTimeout),
		Logger:    logger,
		Metrics:   obs.NewGatewayMetrics(cfg.Metrics.Namespace, reg),
	}
	health := server.Health{}

	if cfg.Redis.URL != "" {
		guard, err := dedupe.NewRedisGuard(cfg.Redis.URL, cfg.Redis.EventTTL)
		if err != nil {
			log.Panicf("failed to configure redis: %v", err)
		}
		defer func() {
			if err := guard.Close(); err != nil {
				logger.Error("failed to close redis", "error", err)
			}
		}()
		deps.Guard = guard
		health.Redis = guard
		logger.Info("webhook event dedupe enabled", "ttl", cfg.Redis.EventTTL.String())
	}

	router := server.NewRouter(server.Options{
		Handler:  handler.NewHandler(cfg, deps),
		Health:   health,
		Logger:   logger,
		Metrics:  obs.NewHTTPMetrics(cfg.Metrics.Namespace, reg),
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              cfg.Http.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Http.ReadTimeout,
		WriteTimeout:      cfg.Http.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info(fmt.Sprintf("Server running on %s", cfg.Http.Addr), "redirect_mode", cfg.Gateway.RedirectMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	slog.Info("server stopped")
}
