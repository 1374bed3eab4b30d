package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

func testOptions() Options {
	return Options{
		Timeout: 2 * time.Second,
		Breaker: BreakerRule{TripConsecutiveFailures: 2, Timeout: time.Minute},
		Logger:  zerolog.Nop(),
	}
}

func TestUpstream_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	up := newUpstream("test", opts)

	var out map[string]any
	for range 2 {
		err := up.getJSON(context.Background(), srv.URL, nil, &out)
		require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	}

	err := up.getJSON(context.Background(), srv.URL, nil, &out)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 2, hits.Load(), "open breaker must not reach the server")

	assert.Equal(t, 2.0, testutil.ToFloat64(opts.Metrics.MarketRequests.WithLabelValues("test", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.MarketRequests.WithLabelValues("test", "breaker_open")))
}

func TestUpstream_ClientErrorsDoNotTrip(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	up := newUpstream("test", testOptions())

	var out map[string]any
	for range 4 {
		err := up.getJSON(context.Background(), srv.URL, nil, &out)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.Code)
	}
	assert.EqualValues(t, 4, hits.Load())
	assert.Equal(t, gobreaker.StateClosed, up.breaker.State())
}

func TestUpstream_CancelledCallerGetsContextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	up := newUpstream("test", testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out map[string]any
	err := up.getJSON(ctx, srv.URL, nil, &out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestUpstream_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	up := newUpstream("test", testOptions())

	var out map[string]any
	err := up.getJSON(context.Background(), srv.URL, nil, &out)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestIsSuccessfulForBreaker(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", context.Canceled, true},
		{"not found", &StatusError{Code: 404}, true},
		{"rate limited", &StatusError{Code: 429}, false},
		{"server error", &StatusError{Code: 503}, false},
		{"deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSuccessfulForBreaker(tt.err))
		})
	}
}
