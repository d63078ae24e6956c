package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/services/payments"
	"stripe-payment-gateway/internal/services/payments/providers"
	"stripe-payment-gateway/internal/services/payments/types"
)

const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
)

// Webhook outcomes, also used as metric labels.
const (
	OutcomeForwarded         = "forwarded"
	OutcomeIgnored           = "ignored"
	OutcomeSkippedForeign    = "skipped_foreign"
	OutcomeSkippedDuplicate  = "skipped_duplicate"
	OutcomeSkippedNoCallback = "skipped_no_callback"
	OutcomeRejected          = "rejected"
)

// Webhook verifies a Stripe event and relays gateway payment results to the
// client callback. Anything that verifies is acknowledged with 200 so Stripe
// does not redeliver, including events whose forwarding failed.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("component", "webhook", "request_id", requestID(r))

	r.Body = http.MaxBytesReader(w, r.Body, h.bodyLimit())
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("reading request body", "error", err)
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Unable to read request body")
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		log.Warn("missing stripe-signature header")
		obs.Inc(h.metrics.WebhookEvents, OutcomeRejected)
		writeError(w, http.StatusBadRequest, "Missing stripe-signature header")
		return
	}

	event, err := h.provider.ParseWebhook(payload, sigHeader)
	if err != nil {
		obs.Inc(h.metrics.WebhookEvents, OutcomeRejected)
		switch {
		case errors.Is(err, providers.ErrNotConfigured):
			log.Error("STRIPE_WEBHOOK_SECRET not configured")
			writeError(w, http.StatusInternalServerError, "Webhook secret not configured")
		case errors.Is(err, providers.ErrSignatureVerification):
			log.Warn("webhook signature verification failed", "error", err)
			writeError(w, http.StatusBadRequest, "Webhook signature verification failed")
		default:
			log.Error("decoding verified webhook event", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid webhook payload")
		}
		return
	}

	log = log.With("event_id", event.ID, "event_type", event.Type)
	log.Info("received event")

	outcome := h.relay(context.WithoutCancel(r.Context()), log, event)
	obs.Inc(h.metrics.WebhookEvents, outcome)

	writeJSON(w, http.StatusOK, types.WebhookAck{Received: true})
}

// relay decides what happens to a verified event and returns the outcome.
func (h *Handler) relay(ctx context.Context, log *slog.Logger, event *types.PaymentIntentEvent) string {
	if event.Type != eventPaymentSucceeded && event.Type != eventPaymentFailed {
		log.Debug("ignoring event type")
		return OutcomeIgnored
	}

	pi := event.PaymentIntent
	if pi == nil || pi.Metadata[payments.MetadataSource] != payments.GatewaySource {
		log.Info("skipping non-gateway payment")
		return OutcomeSkippedForeign
	}

	ref := pi.Metadata[payments.MetadataRef]
	log = log.With("payment_intent", pi.ID, "ref", ref)

	if !h.forwarder.Enabled() {
		log.Warn("GATEWAY_CALLBACK_URL not configured; event not forwarded")
		return OutcomeSkippedNoCallback
	}

	if h.guard != nil {
		claimed, err := h.guard.Acquire(ctx, event.ID)
		switch {
		case err != nil:
			log.Warn("event dedupe unavailable; forwarding anyway", "error", err)
		case !claimed:
			log.Info("event already forwarded")
			return OutcomeSkippedDuplicate
		}
	}

	callback := types.CallbackPayload{
		Event:           event.Type,
		PaymentIntentID: pi.ID,
		Ref:             ref,
		Status:          pi.Status,
		Amount:          payments.FromCents(pi.AmountCents),
		Currency:        pi.Currency,
	}
	if event.Type == eventPaymentFailed {
		callback.FailureMessage = pi.FailureMessage
	}

	log.Info("forwarding event")
	deliveryID, err := h.forwarder.Forward(ctx, event.ID, callback)
	if err != nil {
		// Stripe still gets a 200; the downstream has to reconcile on its own.
		log.Error("callback failed", "delivery_id", deliveryID, "error", err)
		obs.Inc(h.metrics.Callbacks, "failed")
		if h.guard != nil {
			if rerr := h.guard.Release(ctx, event.ID); rerr != nil {
				log.Warn("releasing event claim", "error", rerr)
			}
		}
		return OutcomeForwarded
	}

	log.Info("callback delivered", "delivery_id", deliveryID)
	obs.Inc(h.metrics.Callbacks, "delivered")
	return OutcomeForwarded
}
