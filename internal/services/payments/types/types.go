package types

// CreateIntentRequest is the body accepted by the intent creator. Amount is
// in dollars.
type CreateIntentRequest struct {
	Amount    float64 `json:"amount" validate:"gt=0,lte=999999.99"`
	Ref       string  `json:"ref" validate:"max=500"`
	ReturnUrl string  `json:"returnUrl,omitempty" validate:"omitempty,max=2048"`
}

type CreateIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	PublishableKey  string `json:"publishableKey,omitempty"`
	ReturnUrl       string `json:"returnUrl,omitempty"`
}

// IntentRequest is what the provider needs to open a PaymentIntent.
type IntentRequest struct {
	AmountCents        int64
	Currency           string
	Description        string
	PaymentMethodTypes []string
	Metadata           map[string]string
}

type IntentResult struct {
	ID           string
	ClientSecret string
}

type CheckoutRequest struct {
	Tier string `json:"tier" validate:"required"`
}

type CheckoutSessionParams struct {
	Name        string
	Description string
	UnitAmount  int64
	Currency    string
	SuccessUrl  string
	CancelUrl   string
}

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// PaymentIntentEvent is a verified Stripe webhook event reduced to what the
// forwarder needs. PaymentIntent is nil for non payment-intent events.
type PaymentIntentEvent struct {
	ID            string
	Type          string
	PaymentIntent *PaymentIntentSnapshot
}

type PaymentIntentSnapshot struct {
	ID             string
	Status         string
	AmountCents    int64
	Currency       string
	Metadata       map[string]string
	FailureMessage string
}

// CallbackPayload is POSTed to the client's webhook URL. Amount is in dollars.
type CallbackPayload struct {
	Event           string  `json:"event"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Ref             string  `json:"ref"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	FailureMessage  string  `json:"failureMessage,omitempty"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
