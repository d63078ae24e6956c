package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v84"

	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/services/payments"
	"stripe-payment-gateway/internal/services/payments/providers"
	"stripe-payment-gateway/internal/services/payments/types"
)

// CreateIntent opens a PaymentIntent with a generic description for an
// authenticated upstream caller. The request amount is in dollars.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("component", "create-intent", "request_id", requestID(r))

	if !h.authorized(r.Header.Get(HeaderGatewaySecret)) {
		log.Warn("unauthorized request")
		obs.Inc(h.metrics.Intents, "unauthorized")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body types.CreateIntentRequest
	if err := decodeJSON(w, r, h.bodyLimit(), &body); err != nil {
		obs.Inc(h.metrics.Intents, "invalid")
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		writeError(w, http.StatusBadRequest, decodeErrorMessage(err))
		return
	}

	if err := h.validate.Struct(&body); err != nil {
		obs.Inc(h.metrics.Intents, "invalid")
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	var dest string
	switch {
	case body.ReturnUrl == "":
	case h.redirect.Mode == payments.RedirectDest:
		u, err := payments.CheckDestination(body.ReturnUrl, h.redirect.AllowedHosts)
		if err != nil {
			log.Warn("rejected return url", "error", err)
			obs.Inc(h.metrics.Intents, "invalid")
			writeAppError(w, err)
			return
		}
		dest = u.String()
	default:
		log.Debug("ignoring returnUrl in fixed redirect mode")
	}

	cents := payments.ToCents(body.Amount)
	description := payments.Description(body.Amount)
	methods := payments.PaymentMethodTypes(body.Amount)

	log.Info("creating payment intent",
		"amount_cents", cents,
		"description", description,
		"payment_methods", methods,
		"ref", body.Ref,
	)

	res, err := h.provider.CreatePaymentIntent(r.Context(), types.IntentRequest{
		AmountCents:        cents,
		Currency:           h.cfg.Stripe.Currency,
		Description:        description,
		PaymentMethodTypes: methods,
		Metadata: map[string]string{
			payments.MetadataRef:    body.Ref,
			payments.MetadataSource: payments.GatewaySource,
		},
	})
	if err != nil {
		obs.Inc(h.metrics.Intents, "failed")
		if errors.Is(err, providers.ErrNotConfigured) {
			log.Error("stripe secret key not configured")
			writeError(w, http.StatusInternalServerError, "Payment gateway not configured")
			return
		}
		log.Error("failed to create payment intent", stripeErrorAttrs(err)...)
		writeError(w, http.StatusInternalServerError, "Failed to create payment intent")
		return
	}

	log.Info("payment intent created", "payment_intent", res.ID)
	obs.Inc(h.metrics.Intents, "created")

	resp := types.CreateIntentResponse{
		ClientSecret:    res.ClientSecret,
		PaymentIntentID: res.ID,
		PublishableKey:  h.cfg.Stripe.PublishableKey,
	}
	if h.redirect.Mode != payments.RedirectDest || dest != "" {
		resp.ReturnUrl = payments.ReturnURL(h.publicBase(r), body.Ref, dest)
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "amount":
			return "Invalid amount"
		case "ref":
			return "Invalid ref"
		case "returnUrl":
			return "Invalid return URL"
		}
	}
	return "Invalid JSON"
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Amount":
			return "Invalid amount"
		case "Ref":
			return "Invalid ref"
		case "ReturnUrl":
			return "Invalid return URL"
		case "Tier":
			return "Invalid product tier"
		}
	}
	return "Invalid request"
}

func stripeErrorAttrs(err error) []any {
	attrs := []any{"error", err}
	var se *stripe.Error
	if errors.As(err, &se) {
		attrs = append(attrs,
			"stripe_type", string(se.Type),
			"stripe_code", string(se.Code),
			"stripe_request_id", se.RequestID,
			"stripe_status", se.HTTPStatusCode,
		)
	}
	return attrs
}
