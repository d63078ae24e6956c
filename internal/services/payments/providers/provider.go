package providers

import (
	"context"
	"errors"

	"stripe-payment-gateway/internal/services/payments/types"
)

var (
	// ErrSignatureVerification means a webhook body/signature pair did not verify.
	ErrSignatureVerification = errors.New("webhook signature verification failed")
	// ErrNotConfigured means the provider is missing the key an operation needs.
	ErrNotConfigured = errors.New("payment provider not configured")
)

// PaymentProvider is the subset of the payment processor the gateway relies on.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, req types.IntentRequest) (*types.IntentResult, error)
	CreateCheckoutSession(ctx context.Context, req types.CheckoutSessionParams) (string, error)
	ParseWebhook(payload []byte, sigHeader string) (*types.PaymentIntentEvent, error)
}
