// Package server wires the gateway handlers into a chi router.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/services/payments/handler"
)

type Options struct {
	Handler *handler.Handler
	Health  Health
	Logger  *slog.Logger
	Metrics *obs.HTTPMetrics
	// Gatherer backs /metrics; nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTPObs{Metrics: opts.Metrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: opts.Logger}.Middleware)
	r.Use(obs.SecurityHeaders)

	r.Get("/healthz", opts.Health.Live)
	r.Get("/readyz", opts.Health.Ready)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	h := opts.Handler
	r.Route("/payment-gateway", func(g chi.Router) {
		g.Post("/create-intent", h.CreateIntent)
		g.Get("/redirect", h.Redirect)
		g.Post("/webhook", h.Webhook)
	})
	r.Post("/checkout", h.CheckoutSession)

	return r
}
