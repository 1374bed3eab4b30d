package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	eventRepo   LedgerEventRepository
	ledger      *LedgerUseCase
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. Admin edits run through the
// ledger engine so they share its transaction, outbox and audit handling.
func NewAccountUseCase(accountRepo AccountRepository, eventRepo LedgerEventRepository, ledger *LedgerUseCase, m *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		eventRepo:   eventRepo,
		ledger:      ledger,
		metrics:     m,
	}
}

// GetOrCreateAccount returns the account for id, creating a zeroed one on first access.
func (uc *AccountUseCase) GetOrCreateAccount(ctx context.Context, id, email string) (*domain.Account, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	if user, ok := domain.UserFromContext(ctx); ok {
		if !user.CanAccessAccount(id) {
			return nil, domain.ErrForbidden
		}
		if email == "" && user.ID == id {
			email = user.Email
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	account, err = uc.accountRepo.CreateIfNotExists(ctx, domain.NewAccount(id, email, uc.ledger.now()))
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if user, ok := domain.UserFromContext(ctx); ok && !user.CanAccessAccount(id) {
		return nil, domain.ErrForbidden
	}
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.List(ctx, limit, offset)
}

// SetBalance overwrites an account balance and records the difference as a
// completed adjustment event. A zero difference records nothing.
func (uc *AccountUseCase) SetBalance(ctx context.Context, id string, balance decimal.Decimal) (*ApprovalResult, error) {
	if err := domain.ValidateAmount(balance); err != nil {
		return nil, err
	}

	var result *ApprovalResult
	err := runInTx(ctx, uc.ledger.txManager, uc.ledger.retrier, func(ctx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		before := account.Clone()

		delta := account.SetBalance(balance)
		result = &ApprovalResult{Account: account}
		if delta.IsZero() {
			return nil
		}

		result.Event, err = uc.ledger.appendCompletedTx(ctx, tx, account, delta, domain.EventKindAdjustment)
		if err != nil {
			return err
		}
		if err := uc.ledger.saveAccountTx(ctx, tx, account); err != nil {
			return err
		}

		return uc.ledger.audit.record(ctx, tx, domain.AuditActionAccountSetBalance, domain.AggregateTypeAccount, account.ID, before, account)
	})
	if err != nil {
		return nil, err
	}

	uc.countOperation("set_balance")
	return result, nil
}

// SetTestFlag marks or unmarks an account for test resets.
func (uc *AccountUseCase) SetTestFlag(ctx context.Context, id string, flag bool) (*domain.Account, error) {
	var account *domain.Account
	err := runInTx(ctx, uc.ledger.txManager, uc.ledger.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		account, err = uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if account.TestFlag == flag {
			return nil
		}

		before := account.Clone()
		account.TestFlag = flag
		if err := uc.ledger.saveAccountTx(ctx, tx, account); err != nil {
			return err
		}

		return uc.ledger.audit.record(ctx, tx, domain.AuditActionAccountSetFlag, domain.AggregateTypeAccount, account.ID, before, account)
	})
	if err != nil {
		return nil, err
	}

	uc.countOperation("set_test_flag")
	return account, nil
}

// ResetAccountInput represents input for zeroing one account.
type ResetAccountInput struct {
	AccountID   string
	Confirm     bool
	PurgeEvents bool
}

// ResetAccountResult is the zeroed account and how many of its events were purged.
type ResetAccountResult struct {
	Account       *domain.Account
	EventsDeleted int64
}

// ResetAccount zeroes one account and optionally deletes its ledger events.
func (uc *AccountUseCase) ResetAccount(ctx context.Context, input ResetAccountInput) (*ResetAccountResult, error) {
	if !input.Confirm {
		return nil, domain.ErrConfirmationRequired
	}

	result := &ResetAccountResult{}
	err := runInTx(ctx, uc.ledger.txManager, uc.ledger.retrier, func(ctx context.Context, tx Transaction) error {
		account, _, err := uc.ledger.resetTx(ctx, tx, input.AccountID, false)
		if err != nil {
			return err
		}
		result.Account = account
		result.EventsDeleted = 0

		if !input.PurgeEvents {
			return nil
		}

		result.EventsDeleted, err = uc.eventRepo.DeleteByAccount(ctx, tx, account.ID)
		if err != nil {
			return err
		}

		payload := map[string]any{"account_id": account.ID, "deleted": result.EventsDeleted}
		if err := uc.ledger.outbox.emit(ctx, tx, domain.AggregateTypeAccount, account.ID,
			domain.EventTypeLedgerPurged, account.ID, payload, uc.ledger.now()); err != nil {
			return err
		}

		return uc.ledger.audit.record(ctx, tx, domain.AuditActionLedgerPurge, domain.AggregateTypeAccount, account.ID, nil, payload)
	})
	if err != nil {
		return nil, err
	}

	uc.countOperation("reset")
	return result, nil
}

func (uc *AccountUseCase) countOperation(op string) {
	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues(op).Inc()
	}
}
