package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"

	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}

func TestNewClientOptionsAndPing(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s/0", s.Addr()), Options{PoolSize: 3, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if got := client.Options().PoolSize; got != 3 {
		t.Fatalf("pool size = %d, want 3", got)
	}

	ping := Ping(client)
	if err := ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	s.Close()
	if err := ping(ctx); err == nil {
		t.Fatal("expected ping to fail after shutdown")
	}
}

func TestNewClientRecordsMetrics(t *testing.T) {
	s := miniredis.RunT(t)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()), Options{Metrics: m})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Get(ctx, "missing").Err(); err != goredis.Nil {
		t.Fatalf("expected redis.Nil, got %v", err)
	}

	if got := testutil.ToFloat64(m.RedisOperations.WithLabelValues("get")); got != 1 {
		t.Fatalf("get operations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RedisErrors.WithLabelValues("get")); got != 0 {
		t.Fatalf("a miss must not count as an error, got %v", got)
	}
	if got := testutil.ToFloat64(m.RedisOperations.WithLabelValues("ping")); got != 1 {
		t.Fatalf("ping operations = %v, want 1", got)
	}
}
