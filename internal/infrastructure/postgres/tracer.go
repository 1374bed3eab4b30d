package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

type queryStartKey struct{}

type queryStart struct {
	at        time.Time
	operation string
	table     string
}

// QueryTracer records query counts, latency and errors per statement kind
// and table.
type QueryTracer struct {
	metrics *metrics.Metrics
}

func NewQueryTracer(m *metrics.Metrics) *QueryTracer {
	return &QueryTracer{metrics: m}
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	operation, table := classifyQuery(data.SQL)
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), operation: operation, table: table})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}

	t.metrics.DBQueries.WithLabelValues(start.operation, start.table).Inc()
	t.metrics.DBDuration.WithLabelValues(start.operation, start.table).Observe(time.Since(start.at).Seconds())
	if data.Err != nil && data.Err != pgx.ErrNoRows {
		t.metrics.DBErrors.WithLabelValues(start.operation).Inc()
	}
}

// classifyQuery returns the statement verb and the first table it names.
// sqlc "-- name:" header lines are skipped.
func classifyQuery(sql string) (operation, table string) {
	var words []string
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	if len(words) == 0 {
		return "unknown", "unknown"
	}

	operation = strings.ToLower(words[0])
	table = "unknown"
	for i, w := range words[:len(words)-1] {
		switch strings.ToLower(w) {
		case "from", "into", "update":
			table = strings.Trim(strings.ToLower(words[i+1]), `"();,`)
			return operation, table
		}
	}
	return operation, table
}

// ReportPoolStats publishes the pool size to the connections gauge every
// interval until ctx ends.
func ReportPoolStats(ctx context.Context, pool *pgxpool.Pool, m *metrics.Metrics, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.DBConnections.Set(float64(pool.Stat().TotalConns()))
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
