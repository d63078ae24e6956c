package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"stripe-payment-gateway/internal/services/payments/types"
)

type StripeProvider struct {
	client        *stripe.Client
	webhookSecret string
}

// NewStripeProvider builds a provider around its own Stripe client. An empty
// secretKey or webhookSecret leaves the matching operations returning
// ErrNotConfigured instead of failing at start-up.
func NewStripeProvider(secretKey, webhookSecret string, opts ...stripe.ClientOption) *StripeProvider {
	p := &StripeProvider{webhookSecret: webhookSecret}
	if secretKey != "" {
		p.client = stripe.NewClient(secretKey, opts...)
	}
	return p
}

func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, req types.IntentRequest) (*types.IntentResult, error) {
	if p.client == nil {
		return nil, fmt.Errorf("creating payment intent: %w", ErrNotConfigured)
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice(req.PaymentMethodTypes),
		Description:        stripe.String(req.Description),
		Metadata:           req.Metadata,
	}

	pi, err := p.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}

	return &types.IntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req types.CheckoutSessionParams) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("creating checkout session: %w", ErrNotConfigured)
	}

	params := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessUrl),
		CancelURL:          stripe.String(req.CancelUrl),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.Name),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	s, err := p.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}

	return s.URL, nil
}

// ParseWebhook verifies the raw payload against the signature header and
// decodes payment_intent.* events. The payload must be the unparsed body.
func (p *StripeProvider) ParseWebhook(payload []byte, sigHeader string) (*types.PaymentIntentEvent, error) {
	if p.webhookSecret == "" {
		return nil, fmt.Errorf("verifying stripe webhook: %w", ErrNotConfigured)
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}

	out := &types.PaymentIntentEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("unmarshaling payment_intent: %w", err)
	}

	snapshot := &types.PaymentIntentSnapshot{
		ID:          pi.ID,
		Status:      string(pi.Status),
		AmountCents: pi.Amount,
		Currency:    string(pi.Currency),
		Metadata:    pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		snapshot.FailureMessage = pi.LastPaymentError.Msg
	}
	out.PaymentIntent = snapshot

	return out, nil
}
