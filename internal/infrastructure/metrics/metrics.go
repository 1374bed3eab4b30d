package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerEventsCreated *prometheus.CounterVec
	LedgerTransitions   *prometheus.CounterVec
	LedgerDuration      prometheus.Histogram
	LedgerAmountUSD     prometheus.Histogram
	LedgerErrors        *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Batch metrics
	BatchJobs     *prometheus.CounterVec
	BatchItems    *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec

	// Market data metrics
	MarketRequests *prometheus.CounterVec
	MarketCache    *prometheus.CounterVec
	MarketDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec

	// Outbox and live feed metrics
	OutboxPublished *prometheus.CounterVec
	FeedClients     prometheus.Gauge
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		LedgerEventsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_ledger_events_created_total",
				Help: "Total number of ledger events created by kind",
			},
			[]string{"kind"},
		),
		LedgerTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_ledger_transitions_total",
				Help: "Total number of ledger event status transitions",
			},
			[]string{"kind", "status"},
		),
		LedgerDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinledger_ledger_mutation_duration_seconds",
			Help:    "Duration of balance-mutating ledger operations",
			Buckets: prometheus.DefBuckets,
		}),
		LedgerAmountUSD: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinledger_ledger_amount_usd",
			Help:    "USD amounts of approved ledger events",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_ledger_errors_total",
				Help: "Total number of ledger errors by type",
			},
			[]string{"error_type"},
		),

		// Account metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Batch metrics
		BatchJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_batch_jobs_total",
				Help: "Total batch jobs finished by kind and status",
			},
			[]string{"kind", "status"},
		),
		BatchItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_batch_items_total",
				Help: "Total batch items processed by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		BatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinledger_batch_duration_seconds",
				Help:    "Duration of batch job runs",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"kind"},
		),

		// Market data metrics
		MarketRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_market_requests_total",
				Help: "Total upstream market data requests",
			},
			[]string{"source", "status"},
		),
		MarketCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_market_cache_total",
				Help: "Market data cache lookups by result",
			},
			[]string{"result"},
		),
		MarketDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinledger_market_request_duration_seconds",
				Help:    "Upstream market data request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coinledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinledger_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),

		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinledger_outbox_published_total",
				Help: "Outbox events handed to publishers by result",
			},
			[]string{"status"},
		),
		FeedClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coinledger_feed_clients",
			Help: "Currently connected live feed clients",
		}),
	}
}
