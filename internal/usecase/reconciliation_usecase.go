package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
)

// ReconciliationUseCase compares stored balances with the ledger
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	eventRepo   LedgerEventRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountRepo AccountRepository, eventRepo LedgerEventRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		eventRepo:   eventRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	EventsCounted     int
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount recomputes the balance of an account from its events.
// Account resets are not ledger events, so a reset account with surviving
// events reports drift until they are purged.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	events, err := uc.eventRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	calculated := decimal.Zero
	counted := 0
	for _, e := range events {
		effect, ok := BalanceEffect(e)
		if !ok {
			continue
		}
		calculated = calculated.Add(effect)
		counted++
	}

	diff := account.Balance.Sub(calculated)
	return &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		EventsCounted:     counted,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// BalanceEffect is the signed USD amount an event has contributed to its
// account balance. ok is false for events with no effect: pending and
// rejected events, withdraw requests (their debit is carried by the source
// deposit) and withdrawn deposits (credit and debit cancel out).
func BalanceEffect(e *domain.LedgerEvent) (decimal.Decimal, bool) {
	if e.Kind == domain.EventKindWithdraw {
		return decimal.Zero, false
	}

	switch e.Status {
	case domain.EventStatusCompleted:
		return e.AmountUSD, true
	case domain.EventStatusWithdrawn:
		return decimal.Zero, true
	default:
		return decimal.Zero, false
	}
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	var (
		results []*ReconciliationResult
		cursor  string
	)

	for {
		ids, err := uc.accountRepo.ListIDsAfter(ctx, cursor, false, DefaultBatchPageSize)
		if err != nil {
			return nil, err
		}

		for _, id := range ids {
			result, err := uc.ReconcileAccount(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", id, err)
			}
			results = append(results, result)
		}

		if len(ids) < DefaultBatchPageSize {
			return results, nil
		}
		cursor = ids[len(ids)-1]
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	TotalDrift         decimal.Decimal
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		TotalDrift:    decimal.Zero,
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
			report.TotalDrift = report.TotalDrift.Add(result.Difference)
		}
	}

	return report, nil
}
