package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

// Options tunes the client beyond what the URL carries.
type Options struct {
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Metrics      *metrics.Metrics
}

// NewClient creates a new Redis client and verifies it with a ping.
func NewClient(ctx context.Context, redisURL string, opts ...Options) (*redis.Client, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	for _, o := range opts {
		if o.PoolSize > 0 {
			parsed.PoolSize = o.PoolSize
		}
		if o.DialTimeout > 0 {
			parsed.DialTimeout = o.DialTimeout
		}
		if o.ReadTimeout > 0 {
			parsed.ReadTimeout = o.ReadTimeout
		}
		if o.WriteTimeout > 0 {
			parsed.WriteTimeout = o.WriteTimeout
		}
	}

	client := redis.NewClient(parsed)
	for _, o := range opts {
		if o.Metrics != nil {
			client.AddHook(NewMetricsHook(o.Metrics))
		}
	}

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Ping reports whether Redis answers; used by the readiness probe.
func Ping(client redis.UniversalClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
