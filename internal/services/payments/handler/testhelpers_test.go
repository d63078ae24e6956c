package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84/webhook"

	"stripe-payment-gateway/config"
	"stripe-payment-gateway/internal/obs"
	"stripe-payment-gateway/internal/services/payments/forwarder"
	"stripe-payment-gateway/internal/services/payments/providers"
	"stripe-payment-gateway/internal/services/payments/types"
)

const (
	testWebhookSecret = "whsec_handler_test"
	testGatewaySecret = "gw-secret"
)

// fakeProvider records Stripe API calls; webhook verification is the real one.
type fakeProvider struct {
	*providers.StripeProvider

	mu            sync.Mutex
	intentCalls   int
	lastIntent    types.IntentRequest
	intentErr     error
	checkoutCalls int
	lastCheckout  types.CheckoutSessionParams
	checkoutErr   error
}

func newFakeProvider() *fakeProvider {
	return newFakeProviderWithSecret(testWebhookSecret)
}

func newFakeProviderWithSecret(webhookSecret string) *fakeProvider {
	return &fakeProvider{StripeProvider: providers.NewStripeProvider("", webhookSecret)}
}

func (f *fakeProvider) CreatePaymentIntent(_ context.Context, req types.IntentRequest) (*types.IntentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intentCalls++
	f.lastIntent = req
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	return &types.IntentResult{ID: "pi_test_1", ClientSecret: "pi_test_1_secret_xyz"}, nil
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req types.CheckoutSessionParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutCalls++
	f.lastCheckout = req
	if f.checkoutErr != nil {
		return "", f.checkoutErr
	}
	return "https://checkout.stripe.com/c/pay/cs_test_1", nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Http: config.HttpConfig{MaxBodyBytes: 65536},
		Stripe: config.StripeConfig{
			SecretKey:      "sk_test_123",
			WebhookSecret:  testWebhookSecret,
			PublishableKey: "pk_test_123",
			Currency:       "usd",
		},
		Gateway: config.GatewayConfig{
			Secret:            testGatewaySecret,
			SiteURL:           "https://pay.example.com",
			RedirectMode:      config.RedirectModeFixed,
			ClientRedirectURL: "https://client.example.com/order/confirm",
		},
	}
}

type testEnv struct {
	handler  *Handler
	provider *fakeProvider
	metrics  *obs.GatewayMetrics
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T, cfg *config.AppConfig, deps Deps) *testEnv {
	t.Helper()
	provider := newFakeProvider()
	if deps.Provider == nil {
		deps.Provider = provider
	}
	logs := &bytes.Buffer{}
	deps.Logger = slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	deps.Metrics = obs.NewGatewayMetrics("test", prometheus.NewRegistry())
	return &testEnv{
		handler:  NewHandler(cfg, deps),
		provider: provider,
		metrics:  deps.Metrics,
		logs:     logs,
	}
}

// logLines decodes every JSON log record written so far.
func (e *testEnv) logLines(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(e.logs.Bytes()))
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		out = append(out, line)
	}
	return out
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

type callbackCall struct {
	header http.Header
	body   types.CallbackPayload
}

// callbackSink is a downstream client webhook that records what it receives.
type callbackSink struct {
	mu     sync.Mutex
	calls  []callbackCall
	status int
	srv    *httptest.Server
}

func newCallbackSink(t *testing.T, status int) *callbackSink {
	t.Helper()
	s := &callbackSink{status: status}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload types.CallbackPayload
		_ = json.Unmarshal(raw, &payload)
		s.mu.Lock()
		s.calls = append(s.calls, callbackCall{header: r.Header.Clone(), body: payload})
		s.mu.Unlock()
		w.WriteHeader(s.status)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *callbackSink) forwarder() *forwarder.Forwarder {
	return forwarder.New(s.srv.URL, testGatewaySecret, time.Second)
}

func (s *callbackSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *callbackSink) last() callbackCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func signedWebhookRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(body),
		Secret:  testWebhookSecret,
	})
	req := httptest.NewRequest(http.MethodPost, "/payment-gateway/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}
