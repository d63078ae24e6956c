package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is a dependency that can be probed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health exposes liveness and readiness handlers.
type Health struct {
	Redis        Pinger
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Health) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness. Redis is only probed when event dedupe is enabled.
func (h Health) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"redis": "disabled"}
	code := http.StatusOK

	if h.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.redisTimeout())
		defer cancel()
		if err := h.Redis.Ping(ctx); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["redis"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

func (h Health) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
