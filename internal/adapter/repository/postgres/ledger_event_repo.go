package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coinledger/internal/usecase"
)

const (
	pgErrUniqueViolation      = "23505"
	pendingWithdrawConstraint = "idx_ledger_events_pending_withdraw"
)

// LedgerEventRepository implements usecase.LedgerEventRepository.
type LedgerEventRepository struct {
	queries *generated.Queries
}

// NewLedgerEventRepository creates a new LedgerEventRepository.
func NewLedgerEventRepository(db generated.DBTX) *LedgerEventRepository {
	return &LedgerEventRepository{queries: generated.New(db)}
}

// Create inserts an event within a transaction.
func (r *LedgerEventRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.LedgerEvent) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	err := queries.CreateLedgerEvent(ctx, generated.CreateLedgerEventParams{
		ID:            event.ID,
		AccountID:     event.AccountID,
		UserEmail:     event.UserEmail,
		Coin:          event.Coin,
		AmountCoin:    decimalToNumeric(event.AmountCoin),
		AmountUsd:     decimalToNumeric(event.AmountUSD),
		Kind:          string(event.Kind),
		Status:        string(event.Status),
		SourceEventID: optionalText(event.SourceEventID),
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(event.UpdatedAt),
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == pendingWithdrawConstraint {
		return fmt.Errorf("%w: withdrawal already requested for %s", domain.ErrIllegalTransition, event.SourceEventID)
	}

	return err
}

// GetByID retrieves an event by ID.
func (r *LedgerEventRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEvent, error) {
	row, err := r.queries.GetLedgerEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerEventNotFound
		}

		return nil, err
	}

	return rowToLedgerEvent(row), nil
}

// GetByIDForUpdate retrieves an event by ID with a FOR UPDATE lock.
func (r *LedgerEventRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEvent, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetLedgerEventByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerEventNotFound
		}

		return nil, err
	}

	return rowToLedgerEvent(row), nil
}

// UpdateStatus moves the event from one status to another. It affects no
// rows when the stored status differs from from.
func (r *LedgerEventRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.EventStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	affected, err := queries.UpdateLedgerEventStatus(ctx, generated.UpdateLedgerEventStatusParams{
		ID:         id,
		FromStatus: string(from),
		ToStatus:   string(to),
		UpdatedAt:  timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrStatusConflict
	}

	return nil
}

// List returns events matching the filter, newest first.
func (r *LedgerEventRepository) List(ctx context.Context, filter domain.LedgerEventFilter) ([]*domain.LedgerEvent, error) {
	rows, err := r.queries.ListLedgerEvents(ctx, generated.ListLedgerEventsParams{
		AccountID: filter.AccountID,
		Status:    string(filter.Status),
		Kind:      string(filter.Kind),
		Limit:     rowLimit(filter.Limit),
		Offset:    rowOffset(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToLedgerEvents(rows), nil
}

// ListByAccount returns every event of an account in creation order.
func (r *LedgerEventRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.LedgerEvent, error) {
	rows, err := r.queries.ListLedgerEventsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return rowsToLedgerEvents(rows), nil
}

// ListPendingIDsAfter pages pending event IDs for batch jobs.
func (r *LedgerEventRepository) ListPendingIDsAfter(ctx context.Context, afterID string, limit int) ([]string, error) {
	return r.queries.ListPendingLedgerEventIDsAfter(ctx, generated.ListPendingLedgerEventIDsAfterParams{
		AfterID:  afterID,
		RowLimit: rowLimit(limit),
	})
}

// HasPendingWithdrawal reports whether a withdraw request is open for the deposit.
func (r *LedgerEventRepository) HasPendingWithdrawal(ctx context.Context, tx usecase.Transaction, sourceEventID string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.HasPendingWithdrawal(ctx, optionalText(sourceEventID))
}

// DeleteAll purges the event log.
func (r *LedgerEventRepository) DeleteAll(ctx context.Context, tx usecase.Transaction) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.DeleteAllLedgerEvents(ctx)
}

// DeleteByAccount purges one account's events.
func (r *LedgerEventRepository) DeleteByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.DeleteLedgerEventsByAccount(ctx, accountID)
}

func rowsToLedgerEvents(rows []generated.LedgerEvent) []*domain.LedgerEvent {
	events := make([]*domain.LedgerEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, rowToLedgerEvent(row))
	}
	return events
}

func rowToLedgerEvent(row generated.LedgerEvent) *domain.LedgerEvent {
	return &domain.LedgerEvent{
		ID:            row.ID,
		AccountID:     row.AccountID,
		UserEmail:     row.UserEmail,
		Coin:          row.Coin,
		AmountCoin:    numericToDecimal(row.AmountCoin),
		AmountUSD:     numericToDecimal(row.AmountUsd),
		Kind:          domain.EventKind(row.Kind),
		Status:        domain.EventStatus(row.Status),
		SourceEventID: row.SourceEventID.String,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
