package handler

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"stripe-payment-gateway/config"
	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/services/payments"
	"stripe-payment-gateway/internal/services/payments/dedupe"
	"stripe-payment-gateway/internal/services/payments/forwarder"
	"stripe-payment-gateway/internal/services/payments/providers"
)

// HeaderGatewaySecret authenticates callers of the intent creator.
const HeaderGatewaySecret = "x-gateway-secret"

// Deps are the collaborators a Handler talks to. Guard and Metrics may be nil.
type Deps struct {
	Provider  providers.PaymentProvider
	Forwarder *forwarder.Forwarder
	Guard     dedupe.Guard
	Logger    *slog.Logger
	Metrics   *obs.GatewayMetrics
}

type Handler struct {
	cfg       *config.AppConfig
	provider  providers.PaymentProvider
	forwarder *forwarder.Forwarder
	guard     dedupe.Guard
	logger    *slog.Logger
	metrics   *obs.GatewayMetrics
	redirect  payments.RedirectPolicy
	validate  *validator.Validate
}

func NewHandler(cfg *config.AppConfig, deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = &obs.GatewayMetrics{}
	}
	return &Handler{
		cfg:       cfg,
		provider:  deps.Provider,
		forwarder: deps.Forwarder,
		guard:     deps.Guard,
		logger:    logger,
		metrics:   metrics,
		redirect: payments.RedirectPolicy{
			Mode:         payments.RedirectMode(cfg.Gateway.RedirectMode),
			FixedURL:     cfg.Gateway.ClientRedirectURL,
			AllowedHosts: cfg.Gateway.AllowedRedirectDomains,
		},
		validate: validator.New(),
	}
}

func (h *Handler) authorized(presented string) bool {
	expected := h.cfg.Gateway.Secret
	if expected == "" {
		h.logger.Error("PAYMENT_GATEWAY_SECRET not configured; rejecting gateway call")
		return false
	}
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// publicBase is the origin this service is reachable at, used for return URLs.
func (h *Handler) publicBase(r *http.Request) string {
	if h.cfg.Gateway.SiteURL != "" {
		return h.cfg.Gateway.SiteURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *Handler) bodyLimit() int64 {
	if h.cfg.Http.MaxBodyBytes > 0 {
		return h.cfg.Http.MaxBodyBytes
	}
	return 65536
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
