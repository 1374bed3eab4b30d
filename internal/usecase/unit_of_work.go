package usecase

import (
	"context"
	"time"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

// runInTx runs fn inside one database transaction bounded by
// DefaultTransactionTimeout. With a non-nil retrier the whole unit, begin to
// commit, is re-run on deadlocks and serialization failures, so fn must only
// touch state it reloads inside the transaction.
func runInTx(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if retrier == nil {
		return attempt()
	}
	return retrier.Retry(ctx, attempt)
}

// outboxWriter appends outbox rows inside the caller's transaction.
type outboxWriter struct {
	repo  OutboxRepository
	idGen IDGenerator
}

func (w outboxWriter) emit(ctx context.Context, tx Transaction, aggregateType, aggregateID, eventType, accountID string, payload map[string]any, now time.Time) error {
	if w.repo == nil {
		return nil
	}

	return w.repo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            w.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		AccountID:     accountID,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	})
}

// auditWriter appends audit rows inside the caller's transaction.
type auditWriter struct {
	repo    AuditRepository
	idGen   IDGenerator
	metrics *metrics.Metrics
}

func (w auditWriter) record(ctx context.Context, tx Transaction, action domain.AuditAction, resourceType, resourceID string, before, after any) error {
	if w.repo == nil {
		return nil
	}

	auditLog := &domain.AuditLog{
		ID:           w.idGen.Generate(),
		UserID:       domain.ActorID(ctx),
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    domain.RequestIDFromContext(ctx),
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if err := w.repo.CreateTx(ctx, tx, auditLog); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.AuditLogsCreated.WithLabelValues(auditLog.Action, auditLog.Status).Inc()
	}
	return nil
}
