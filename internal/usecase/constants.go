package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultMarketCacheTTL is how long market data responses are reused.
	DefaultMarketCacheTTL = 12 * time.Second

	// DefaultBatchPageSize is how many targets a batch job loads per checkpoint.
	DefaultBatchPageSize = 100

	// DefaultBatchConcurrency bounds parallel item work inside a page.
	DefaultBatchConcurrency = 8
)
