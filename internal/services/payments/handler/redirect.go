package handler

import (
	"net/http"

	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/services/payments"
)

// Redirect receives Stripe's post-payment browser redirect on this domain and
// sends the browser on to the client destination with Stripe's result attached.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := payments.RedirectParams{
		Ref:            q.Get("ref"),
		PaymentIntent:  q.Get("payment_intent"),
		RedirectStatus: q.Get("redirect_status"),
	}
	dest := q.Get("dest")

	log := h.logger.With(
		"component", "redirect",
		"request_id", requestID(r),
		"ref", params.Ref,
		"redirect_status", params.RedirectStatus,
		"payment_intent", truncate(params.PaymentIntent, 15),
	)

	if h.redirect.Mode == payments.RedirectFixed && dest != "" {
		log.Warn("ignoring dest parameter in fixed redirect mode")
	}

	target, err := h.redirect.Resolve(dest)
	if err != nil {
		kind := payments.KindOf(err)
		if kind == payments.KindMisconfiguration {
			log.Error("redirect destination not configured", "error", err)
		} else {
			log.Warn("redirect rejected", "kind", kind.String(), "error", err)
		}
		obs.Inc(h.metrics.Redirects, kind.String())
		writeAppError(w, err)
		return
	}

	location := payments.ForwardTo(target, params)

	log.Info("redirecting", "host", target.Hostname(), "path", target.Path)
	obs.Inc(h.metrics.Redirects, "redirected")

	http.Redirect(w, r, location, http.StatusTemporaryRedirect)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
