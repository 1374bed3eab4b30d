package usecase_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
	"github.com/iho/coinledger/internal/usecase/mocks"
)

type ledgerFixture struct {
	accounts *mocks.MockAccountRepository
	events   *mocks.MockLedgerEventRepository
	jobs     *mocks.MockBatchJobRepository
	outbox   *mocks.MockOutboxRepository
	audit    *mocks.MockAuditRepository
	txm      *mocks.MockTransactionManager
	idGen    *mocks.MockIDGenerator
	ledger   *usecase.LedgerUseCase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		accounts: mocks.NewMockAccountRepository(),
		events:   mocks.NewMockLedgerEventRepository(),
		jobs:     mocks.NewMockBatchJobRepository(),
		outbox:   mocks.NewMockOutboxRepository(),
		audit:    mocks.NewMockAuditRepository(),
		txm:      mocks.NewMockTransactionManager(),
		idGen:    mocks.NewMockIDGenerator(),
	}
	f.ledger = usecase.NewLedgerUseCase(f.txm, f.accounts, f.events, f.outbox, f.audit, f.idGen, nil, nil)
	return f
}

func (f *ledgerFixture) accountUseCase() *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(f.accounts, f.events, f.ledger, nil)
}

func (f *ledgerFixture) batchUseCase(cfg usecase.BatchConfig) *usecase.BatchUseCase {
	return usecase.NewBatchUseCase(f.jobs, f.accounts, f.events, f.ledger, cfg, zerolog.Nop(), nil)
}

func (f *ledgerFixture) seedAccount(id, balance string) *domain.Account {
	account := domain.NewAccount(id, id+"@example.com", time.Now().UTC())
	account.Balance = dec(balance)
	f.accounts.Seed(account)
	return account
}

func (f *ledgerFixture) seedEvent(e *domain.LedgerEvent) *domain.LedgerEvent {
	if e.Coin == "" {
		e.Coin = domain.DefaultCoin
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.UpdatedAt = e.CreatedAt
	f.events.Seed(e)
	return e
}

func (f *ledgerFixture) event(id string) *domain.LedgerEvent {
	e, err := f.events.GetByID(context.Background(), id)
	if err != nil {
		return nil
	}
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func asUser(id string) context.Context {
	return domain.ContextWithUser(context.Background(), &domain.User{ID: id, Role: domain.RoleUser})
}

func asAdmin() context.Context {
	return domain.ContextWithUser(context.Background(), &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
}
