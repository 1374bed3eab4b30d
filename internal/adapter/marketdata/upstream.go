// Package marketdata holds the clients for price feeds and block explorers.
// Every remote call goes through a circuit breaker and is reported as a
// domain.UpstreamError when it fails.
package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 4 << 20
	defaultTxLimit  = 10
)

// BreakerRule configures when an upstream is considered unhealthy.
type BreakerRule struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval is the closed-state counting window.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	TripConsecutiveFailures uint32
	TripFailureRate         float64
	TripMinRequests         uint32
}

func (r BreakerRule) withDefaults() BreakerRule {
	if r.MaxRequests == 0 {
		r.MaxRequests = 1
	}
	if r.Interval <= 0 {
		r.Interval = time.Minute
	}
	if r.Timeout <= 0 {
		r.Timeout = 30 * time.Second
	}
	if r.TripConsecutiveFailures == 0 && r.TripFailureRate == 0 {
		r.TripConsecutiveFailures = 5
	}
	if r.TripMinRequests == 0 {
		r.TripMinRequests = 20
	}
	return r
}

// Options are shared by all clients in this package.
type Options struct {
	Timeout    time.Duration
	Breaker    BreakerRule
	HTTPClient *http.Client
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// StatusError is a non-2xx answer from an upstream HTTP API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// upstream is one remote dependency behind its own breaker.
type upstream struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func newUpstream(name string, opts Options) *upstream {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	logger := opts.Logger.With().Str("component", "marketdata").Str("upstream", name).Logger()
	rule := opts.Breaker.withDefaults()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: rule.MaxRequests,
		Interval:    rule.Interval,
		Timeout:     rule.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if rule.TripConsecutiveFailures > 0 && c.ConsecutiveFailures >= rule.TripConsecutiveFailures {
				return true
			}
			if rule.TripFailureRate > 0 && c.Requests >= rule.TripMinRequests {
				return float64(c.TotalFailures)/float64(c.Requests) >= rule.TripFailureRate
			}
			return false
		},
		IsSuccessful: isSuccessfulForBreaker,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &upstream{
		name:    name,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// isSuccessfulForBreaker keeps caller mistakes and cancellations from
// tripping the breaker.
func isSuccessfulForBreaker(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests
	}
	return false
}

// getJSON fetches rawURL and decodes the body into out with json.Number
// for numeric values.
func (u *upstream) getJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	body, err := u.call(ctx, func(ctx context.Context) ([]byte, error) {
		return u.fetch(ctx, rawURL, header)
	})
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return domain.NewUpstreamError(u.name, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// guard runs an SDK call (JSON-RPC clients) through the breaker.
func (u *upstream) guard(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := u.call(ctx, func(ctx context.Context) ([]byte, error) {
		return nil, fn(ctx)
	})
	return err
}

func (u *upstream) call(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	start := time.Now()
	body, err := u.breaker.Execute(func() ([]byte, error) {
		return fn(ctx)
	})
	u.observe(start, err)

	if err == nil {
		return body, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	u.logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("upstream request failed")
	return nil, domain.NewUpstreamError(u.name, err)
}

func (u *upstream) fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	return body, nil
}

func (u *upstream) observe(start time.Time, err error) {
	if u.metrics == nil {
		return
	}

	status := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "breaker_open"
	case err != nil:
		status = "error"
	}

	u.metrics.MarketRequests.WithLabelValues(u.name, status).Inc()
	u.metrics.MarketDuration.WithLabelValues(u.name).Observe(time.Since(start).Seconds())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
