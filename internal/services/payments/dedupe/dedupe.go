// Package dedupe claims Stripe event ids so a redelivered webhook is forwarded once.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "gateway:webhook:"

// Guard claims an event id. Acquire returns false when the id was already claimed.
type Guard interface {
	Acquire(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type RedisGuard struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

// NewRedisGuard connects to the Redis instance at rawURL.
func NewRedisGuard(rawURL string, ttl time.Duration) (*RedisGuard, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &RedisGuard{Client: redis.NewClient(opts), Prefix: defaultPrefix, TTL: ttl}, nil
}

func (g *RedisGuard) Acquire(ctx context.Context, eventID string) (bool, error) {
	ok, err := g.Client.SetNX(ctx, g.key(eventID), time.Now().UTC().Format(time.RFC3339), g.ttl()).Result()
	if err != nil {
		return false, fmt.Errorf("claiming event %s: %w", eventID, err)
	}
	return ok, nil
}

// Release drops a claim so a later redelivery is forwarded again.
func (g *RedisGuard) Release(ctx context.Context, eventID string) error {
	if err := g.Client.Del(ctx, g.key(eventID)).Err(); err != nil {
		return fmt.Errorf("releasing event %s: %w", eventID, err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.Client.Ping(ctx).Err()
}

func (g *RedisGuard) Close() error {
	return g.Client.Close()
}

func (g *RedisGuard) key(eventID string) string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return prefix + eventID
}

func (g *RedisGuard) ttl() time.Duration {
	if g.TTL <= 0 {
		return 72 * time.Hour
	}
	return g.TTL
}
