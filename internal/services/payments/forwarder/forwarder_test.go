package forwarder_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"stripe-payment-gateway/internal/services/payments/forwarder"
	"stripe-payment-gateway/internal/services/payments/types"
)

func TestForwardSendsPayloadAndHeaders(t *testing.T) {
	type recorded struct {
		req  *http.Request
		body []byte
	}
	received := make(chan recorded, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- recorded{req: r, body: body}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	f := forwarder.New(srv.URL, "shared", time.Second)
	require.True(t, f.Enabled())

	deliveryID, err := f.Forward(context.Background(), "evt_1", types.CallbackPayload{
		Event:           "payment_intent.succeeded",
		PaymentIntentID: "pi_1",
		Ref:             "abc123",
		Status:          "succeeded",
		Amount:          149.99,
		Currency:        "usd",
	})
	require.NoError(t, err)
	_, err = uuid.Parse(deliveryID)
	require.NoError(t, err)

	rec := <-received
	require.Equal(t, http.MethodPost, rec.req.Method)
	require.Equal(t, "application/json", rec.req.Header.Get("Content-Type"))
	require.Equal(t, "shared", rec.req.Header.Get(forwarder.HeaderGatewaySecret))
	require.Equal(t, "evt_1", rec.req.Header.Get(forwarder.HeaderEventID))
	require.Equal(t, deliveryID, rec.req.Header.Get(forwarder.HeaderDeliveryID))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &got))
	require.Equal(t, "abc123", got["ref"])
	require.Equal(t, "pi_1", got["paymentIntentId"])
	require.Equal(t, 149.99, got["amount"])
	require.NotContains(t, got, "failureMessage")
}

func TestForwardReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := forwarder.New(srv.URL, "s", time.Second).Forward(context.Background(), "evt", types.CallbackPayload{})
	require.ErrorIs(t, err, forwarder.ErrCallbackStatus)
}

func TestForwardReportsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := forwarder.New(url, "s", time.Second).Forward(context.Background(), "evt", types.CallbackPayload{})
	require.Error(t, err)
}

func TestEnabled(t *testing.T) {
	var nilForwarder *forwarder.Forwarder
	require.False(t, nilForwarder.Enabled())
	require.False(t, forwarder.New("", "s", 0).Enabled())
}
