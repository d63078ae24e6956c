package handler

import (
	"errors"
	"net/http"

	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/services/payments"
	"stripe-payment-gateway/internal/services/payments/providers"
	"stripe-payment-gateway/internal/services/payments/types"
)

// CheckoutSession starts a hosted Stripe Checkout for one of the site's own
// consultation tiers.
func (h *Handler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("component", "checkout", "request_id", requestID(r))

	var body types.CheckoutRequest
	if err := decodeJSON(w, r, h.bodyLimit(), &body); err != nil {
		obs.Inc(h.metrics.Checkouts, "invalid")
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		obs.Inc(h.metrics.Checkouts, "invalid")
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	tier, ok := payments.LookupTier(body.Tier)
	if !ok {
		obs.Inc(h.metrics.Checkouts, "invalid")
		writeError(w, http.StatusBadRequest, "Invalid product tier")
		return
	}

	base := h.publicBase(r)
	url, err := h.provider.CreateCheckoutSession(r.Context(), types.CheckoutSessionParams{
		Name:        tier.Name,
		Description: tier.Description,
		UnitAmount:  tier.UnitAmount,
		Currency:    h.cfg.Stripe.Currency,
		SuccessUrl:  base + "/success",
		CancelUrl:   base + "/#pricing",
	})
	if err != nil {
		obs.Inc(h.metrics.Checkouts, "failed")
		if errors.Is(err, providers.ErrNotConfigured) {
			log.Error("stripe secret key not configured")
			writeError(w, http.StatusInternalServerError, "Payment gateway not configured")
			return
		}
		log.Error("creating checkout session", stripeErrorAttrs(err)...)
		writeError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	log.Info("checkout session created", "tier", tier.Key)
	obs.Inc(h.metrics.Checkouts, "created")
	writeJSON(w, http.StatusOK, types.CheckoutSessionResponse{URL: url})
}
