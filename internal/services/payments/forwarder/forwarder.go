// Package forwarder relays normalized payment events to the client's callback URL.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"stripe-payment-gateway/internal/services/payments/types"
)

// Headers sent with every callback.
const (
	HeaderGatewaySecret = "x-gateway-secret"
	HeaderEventID       = "X-Gateway-Event-Id"
	HeaderDeliveryID    = "X-Gateway-Delivery"
)

// ErrCallbackStatus is returned when the callback answers with a non-2xx status.
var ErrCallbackStatus = errors.New("callback returned non-2xx status")

// Forwarder POSTs one payload per call and never retries.
type Forwarder struct {
	URL    string
	Secret string
	Client *http.Client
}

// New returns a Forwarder using an HTTP client with the given timeout.
func New(url, secret string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Forwarder{
		URL:    url,
		Secret: secret,
		Client: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a callback URL is configured.
func (f *Forwarder) Enabled() bool {
	return f != nil && f.URL != ""
}

// Forward sends payload to the callback URL and returns the delivery id it used.
func (f *Forwarder) Forward(ctx context.Context, eventID string, payload types.CallbackPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building callback request: %w", err)
	}

	deliveryID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderGatewaySecret, f.Secret)
	req.Header.Set(HeaderEventID, eventID)
	req.Header.Set(HeaderDeliveryID, deliveryID)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return deliveryID, fmt.Errorf("sending callback: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return deliveryID, fmt.Errorf("%w: %d", ErrCallbackStatus, resp.StatusCode)
	}

	return deliveryID, nil
}
