package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// CreateIfNotExists inserts account unless a row with its ID exists, and
	// returns the stored row either way.
	CreateIfNotExists(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// Update persists money fields, holdings and test flag, bumping the version.
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	// ListIDsAfter pages account IDs in ascending order after the cursor.
	ListIDsAfter(ctx context.Context, afterID string, testOnly bool, limit int) ([]string, error)
}

// LedgerEventRepository defines data access for ledger events.
type LedgerEventRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.LedgerEvent) error
	GetByID(ctx context.Context, id string) (*domain.LedgerEvent, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LedgerEvent, error)
	// UpdateStatus is a compare-and-set: it fails with domain.ErrStatusConflict
	// when the stored status is no longer from.
	UpdateStatus(ctx context.Context, tx Transaction, id string, from, to domain.EventStatus, updatedAt time.Time) error
	List(ctx context.Context, filter domain.LedgerEventFilter) ([]*domain.LedgerEvent, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.LedgerEvent, error)
	// ListPendingIDsAfter pages pending event IDs in ascending order after the cursor.
	ListPendingIDsAfter(ctx context.Context, afterID string, limit int) ([]string, error)
	// HasPendingWithdrawal reports whether a pending withdraw request exists for the deposit.
	HasPendingWithdrawal(ctx context.Context, tx Transaction, sourceEventID string) (bool, error)
	DeleteAll(ctx context.Context, tx Transaction) (int64, error)
	DeleteByAccount(ctx context.Context, tx Transaction, accountID string) (int64, error)
}

// BatchJobRepository defines data access for batch jobs and their items.
type BatchJobRepository interface {
	Create(ctx context.Context, tx Transaction, job *domain.BatchJob) error
	GetByID(ctx context.Context, id string) (*domain.BatchJob, error)
	// Update checkpoints status, cursor and counters.
	Update(ctx context.Context, job *domain.BatchJob) error
	List(ctx context.Context, limit, offset int) ([]*domain.BatchJob, error)
	// RecordItem stores the outcome for a target inside tx. Recording the same
	// target twice for a job is a no-op that returns false.
	RecordItem(ctx context.Context, tx Transaction, item *domain.BatchItem) (bool, error)
	HasItem(ctx context.Context, tx Transaction, jobID, targetID string) (bool, error)
	CountItems(ctx context.Context, jobID string) (map[domain.BatchOutcome]int, error)
	ListItems(ctx context.Context, jobID string, limit, offset int) ([]*domain.BatchItem, error)
}

// LinkedAddressRepository defines data access for linked blockchain addresses.
type LinkedAddressRepository interface {
	Create(ctx context.Context, address *domain.LinkedAddress) error
	GetByID(ctx context.Context, id string) (*domain.LinkedAddress, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.LinkedAddress, error)
	UpdateBalance(ctx context.Context, id string, balance, balanceUSD decimal.Decimal, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// MessageRepository defines data access for support messages.
type MessageRepository interface {
	Create(ctx context.Context, tx Transaction, message *domain.SupportMessage) error
	GetByID(ctx context.Context, id string) (*domain.SupportMessage, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SupportMessage, error)
	List(ctx context.Context, limit, offset int) ([]*domain.SupportMessage, error)
	Delete(ctx context.Context, id string) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// PriceSource quotes coins against USD.
type PriceSource interface {
	SpotPrices(ctx context.Context, symbols []string) (map[string]domain.SpotPrice, error)
	MarketChart(ctx context.Context, symbol string, days int) ([]domain.ChartPoint, error)
}

// AddressExplorer reads balances and history for one chain.
type AddressExplorer interface {
	Chain() domain.Chain
	ValidateAddress(address string) error
	Activity(ctx context.Context, address string) (*domain.AddressActivity, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Get returns ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops an in-flight marker so the request can be retried.
	Release(ctx context.Context, key string) error
}
