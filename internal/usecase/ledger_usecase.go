package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the ledger mutation engine. Every exported mutation runs
// as one transaction that locks the event and account rows, moves the event
// status with a compare-and-set and writes outbox and audit rows.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	eventRepo   LedgerEventRepository
	idGen       IDGenerator
	retrier     Retrier
	outbox      outboxWriter
	audit       auditWriter
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase. retrier, auditRepo and m may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	eventRepo LedgerEventRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		eventRepo:   eventRepo,
		idGen:       idGen,
		retrier:     retrier,
		outbox:      outboxWriter{repo: outboxRepo, idGen: idGen},
		audit:       auditWriter{repo: auditRepo, idGen: idGen, metrics: m},
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateEventInput represents input for recording a ledger event.
type CreateEventInput struct {
	AccountID     string
	Coin          string
	AmountCoin    decimal.Decimal
	AmountUSD     decimal.Decimal
	Kind          domain.EventKind
	SourceEventID string
}

// ApprovalResult is the event and account after an approval.
type ApprovalResult struct {
	Event   *domain.LedgerEvent
	Account *domain.Account
}

// AdjustProfitInput represents input for a single-account profit adjustment.
type AdjustProfitInput struct {
	AccountID string
	Amount    decimal.Decimal
	// Kind is optional; it defaults to profit, or fee for negative amounts.
	Kind domain.EventKind
}

// CreateEvent records a new ledger event. Deposits and adjustments are created
// pending; profit and fee are applied immediately through AdjustProfit; a
// withdraw is filed as a withdrawal request against SourceEventID.
func (uc *LedgerUseCase) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.LedgerEvent, error) {
	kind, err := domain.ParseEventKind(string(input.Kind))
	if err != nil {
		return nil, err
	}

	if user, ok := domain.UserFromContext(ctx); ok {
		if !user.CanAccessAccount(input.AccountID) {
			return nil, domain.ErrForbidden
		}
		if !user.Role.IsAdmin() && kind != domain.EventKindDeposit && kind != domain.EventKindWithdraw {
			return nil, fmt.Errorf("%w: only admins may record %s events", domain.ErrForbidden, kind)
		}
	}

	switch kind {
	case domain.EventKindWithdraw:
		return uc.RequestWithdrawal(ctx, input.SourceEventID)
	case domain.EventKindProfit, domain.EventKindFee:
		result, err := uc.AdjustProfit(ctx, AdjustProfitInput{
			AccountID: input.AccountID,
			Amount:    input.AmountUSD,
			Kind:      kind,
		})
		if err != nil {
			return nil, err
		}
		return result.Event, nil
	}

	now := uc.now()
	event := &domain.LedgerEvent{
		AccountID:  input.AccountID,
		Coin:       domain.NormalizeCoin(input.Coin),
		AmountCoin: input.AmountCoin,
		AmountUSD:  input.AmountUSD,
		Kind:       kind,
		Status:     domain.EventStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(event.AmountUSD); err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, event.AccountID)
		if err != nil {
			return err
		}

		event.ID = uc.idGen.Generate()
		event.UserEmail = account.Email
		if err := uc.eventRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		return uc.outbox.emit(ctx, tx, domain.AggregateTypeLedgerEvent, event.ID,
			domain.EventTypeLedgerEventCreated, event.AccountID, domain.LedgerEventPayload(event), now)
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerEventsCreated.WithLabelValues(string(event.Kind)).Inc()
	}

	return event, nil
}

// GetEvent retrieves a ledger event by ID.
func (uc *LedgerUseCase) GetEvent(ctx context.Context, id string) (*domain.LedgerEvent, error) {
	event, err := uc.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user, ok := domain.UserFromContext(ctx); ok && !user.CanAccessAccount(event.AccountID) {
		return nil, domain.ErrForbidden
	}

	return event, nil
}

// ListEvents lists ledger events matching filter.
func (uc *LedgerUseCase) ListEvents(ctx context.Context, filter domain.LedgerEventFilter) ([]*domain.LedgerEvent, error) {
	if user, ok := domain.UserFromContext(ctx); ok && !user.Role.IsAdmin() {
		if filter.AccountID == "" {
			filter.AccountID = user.ID
		}
		if filter.AccountID != user.ID {
			return nil, domain.ErrForbidden
		}
	}

	limit, offset, err := domain.ValidatePagination(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset

	return uc.eventRepo.List(ctx, filter)
}

// ApproveEvent approves a pending event, dispatching on its kind: deposits
// and adjustments credit the account, withdraw requests cash out their source
// deposit, profit and fee events apply their amount.
func (uc *LedgerUseCase) ApproveEvent(ctx context.Context, id string) (*ApprovalResult, error) {
	start := time.Now()

	var result *ApprovalResult
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		result, err = uc.approveTx(ctx, tx, id)
		return err
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	uc.observeTransition(result.Event, start)
	return result, nil
}

// RejectEvent moves a pending event to rejected. Rejecting an already
// rejected event succeeds without writing anything.
func (uc *LedgerUseCase) RejectEvent(ctx context.Context, id string) (*domain.LedgerEvent, error) {
	start := time.Now()

	var (
		event   *domain.LedgerEvent
		changed bool
	)
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		event, changed, err = uc.rejectTx(ctx, tx, id)
		return err
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if changed {
		uc.observeTransition(event, start)
	}
	return event, nil
}

// ApproveWithdrawal cashes out a matured, completed deposit: the deposit
// becomes withdrawn, the balance is debited and the coin holding is reduced,
// floored at zero.
func (uc *LedgerUseCase) ApproveWithdrawal(ctx context.Context, depositID string) (*ApprovalResult, error) {
	start := time.Now()

	var result *ApprovalResult
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		deposit, err := uc.eventRepo.GetByIDForUpdate(ctx, tx, depositID)
		if err != nil {
			return err
		}

		account, err := uc.withdrawTx(ctx, tx, deposit)
		if err != nil {
			return err
		}

		result = &ApprovalResult{Event: deposit, Account: account}
		return nil
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	uc.observeTransition(result.Event, start)
	return result, nil
}

// RequestWithdrawal files a pending withdraw event against a matured,
// completed deposit owned by the caller.
func (uc *LedgerUseCase) RequestWithdrawal(ctx context.Context, depositID string) (*domain.LedgerEvent, error) {
	if depositID == "" {
		return nil, fmt.Errorf("%w: source deposit is required", domain.ErrInvalidInput)
	}

	var request *domain.LedgerEvent
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		deposit, err := uc.eventRepo.GetByIDForUpdate(ctx, tx, depositID)
		if err != nil {
			return err
		}

		if user, ok := domain.UserFromContext(ctx); ok && !user.CanAccessAccount(deposit.AccountID) {
			return domain.ErrForbidden
		}

		now := uc.now()
		if err := deposit.CheckWithdrawable(now); err != nil {
			return err
		}

		pending, err := uc.eventRepo.HasPendingWithdrawal(ctx, tx, deposit.ID)
		if err != nil {
			return err
		}
		if pending {
			return fmt.Errorf("%w: withdrawal already requested for %s", domain.ErrIllegalTransition, deposit.ID)
		}

		request = &domain.LedgerEvent{
			ID:            uc.idGen.Generate(),
			AccountID:     deposit.AccountID,
			UserEmail:     deposit.UserEmail,
			Coin:          deposit.Coin,
			AmountCoin:    deposit.AmountCoin,
			AmountUSD:     deposit.AmountUSD,
			Kind:          domain.EventKindWithdraw,
			Status:        domain.EventStatusPending,
			SourceEventID: deposit.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.eventRepo.Create(ctx, tx, request); err != nil {
			return err
		}

		return uc.outbox.emit(ctx, tx, domain.AggregateTypeLedgerEvent, request.ID,
			domain.EventTypeLedgerEventCreated, request.AccountID, domain.LedgerEventPayload(request), now)
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerEventsCreated.WithLabelValues(string(domain.EventKindWithdraw)).Inc()
	}

	return request, nil
}

// AdjustProfit moves balance and totalProfit by amount and appends a
// completed USD event. Fees always debit, whatever the sign of amount.
func (uc *LedgerUseCase) AdjustProfit(ctx context.Context, input AdjustProfitInput) (*ApprovalResult, error) {
	kind, err := profitKind(input.Kind, input.Amount)
	if err != nil {
		return nil, err
	}
	amount := input.Amount
	if kind == domain.EventKindFee {
		amount = amount.Abs().Neg()
	}

	start := time.Now()

	var result *ApprovalResult
	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		result, err = uc.adjustTx(ctx, tx, input.AccountID, amount, kind)
		return err
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerEventsCreated.WithLabelValues(string(kind)).Inc()
		uc.metrics.LedgerDuration.Observe(time.Since(start).Seconds())
	}

	return result, nil
}

func profitKind(kind domain.EventKind, amount decimal.Decimal) (domain.EventKind, error) {
	switch kind {
	case "":
		if amount.IsNegative() {
			return domain.EventKindFee, nil
		}
		return domain.EventKindProfit, nil
	case domain.EventKindProfit, domain.EventKindFee, domain.EventKindAdjustment:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %s cannot adjust profit", domain.ErrInvalidKind, kind)
	}
}

func (uc *LedgerUseCase) approveTx(ctx context.Context, tx Transaction, id string) (*ApprovalResult, error) {
	event, err := uc.eventRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if event.Status != domain.EventStatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, event.Status, domain.EventStatusCompleted)
	}

	if event.Kind == domain.EventKindWithdraw {
		return uc.completeWithdrawalRequestTx(ctx, tx, event)
	}

	if event.Kind == domain.EventKindDeposit || event.Kind == domain.EventKindAdjustment {
		if err := event.CheckCreditable(); err != nil {
			return nil, err
		}
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, event.AccountID)
	if err != nil {
		return nil, err
	}
	before := account.Clone()

	switch event.Kind {
	case domain.EventKindProfit:
		account.ApplyProfit(event.AmountUSD)
	case domain.EventKindFee:
		account.ApplyFee(event.AmountUSD)
	default:
		account.CreditDeposit(event.Coin, event.AmountCoin, event.AmountUSD)
	}

	if err := uc.transitionTx(ctx, tx, event, domain.EventStatusCompleted); err != nil {
		return nil, err
	}
	if err := uc.saveAccountTx(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := uc.audit.record(ctx, tx, domain.AuditActionEventApprove, domain.AggregateTypeAccount, account.ID, before, account); err != nil {
		return nil, err
	}

	return &ApprovalResult{Event: event, Account: account}, nil
}

// completeWithdrawalRequestTx approves a pending withdraw request by cashing
// out its source deposit and marking the request completed.
func (uc *LedgerUseCase) completeWithdrawalRequestTx(ctx context.Context, tx Transaction, request *domain.LedgerEvent) (*ApprovalResult, error) {
	deposit, err := uc.eventRepo.GetByIDForUpdate(ctx, tx, request.SourceEventID)
	if err != nil {
		return nil, err
	}
	if deposit.AccountID != request.AccountID {
		return nil, fmt.Errorf("%w: source deposit belongs to another account", domain.ErrNotWithdrawable)
	}

	account, err := uc.withdrawTx(ctx, tx, deposit)
	if err != nil {
		return nil, err
	}

	if err := uc.transitionTx(ctx, tx, request, domain.EventStatusCompleted); err != nil {
		return nil, err
	}

	return &ApprovalResult{Event: request, Account: account}, nil
}

func (uc *LedgerUseCase) withdrawTx(ctx context.Context, tx Transaction, deposit *domain.LedgerEvent) (*domain.Account, error) {
	if err := deposit.CheckWithdrawable(uc.now()); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, deposit.AccountID)
	if err != nil {
		return nil, err
	}
	before := account.Clone()

	account.DebitWithdrawal(deposit.Coin, deposit.AmountCoin, deposit.AmountUSD)

	if err := uc.transitionTx(ctx, tx, deposit, domain.EventStatusWithdrawn); err != nil {
		return nil, err
	}
	if err := uc.saveAccountTx(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := uc.audit.record(ctx, tx, domain.AuditActionEventWithdraw, domain.AggregateTypeAccount, account.ID, before, account); err != nil {
		return nil, err
	}

	return account, nil
}

// rejectTx reports changed=false when the event was already rejected.
func (uc *LedgerUseCase) rejectTx(ctx context.Context, tx Transaction, id string) (*domain.LedgerEvent, bool, error) {
	event, err := uc.eventRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}

	if event.Status == domain.EventStatusRejected {
		return event, false, nil
	}

	before := *event
	if err := uc.transitionTx(ctx, tx, event, domain.EventStatusRejected); err != nil {
		return nil, false, err
	}
	if err := uc.audit.record(ctx, tx, domain.AuditActionEventReject, domain.AggregateTypeLedgerEvent, event.ID, before, event); err != nil {
		return nil, false, err
	}

	return event, true, nil
}

func (uc *LedgerUseCase) adjustTx(ctx context.Context, tx Transaction, accountID string, amount decimal.Decimal, kind domain.EventKind) (*ApprovalResult, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	before := account.Clone()

	account.ApplyProfit(amount)

	event, err := uc.appendCompletedTx(ctx, tx, account, amount, kind)
	if err != nil {
		return nil, err
	}
	if err := uc.saveAccountTx(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := uc.audit.record(ctx, tx, domain.AuditActionAdjustProfit, domain.AggregateTypeAccount, account.ID, before, account); err != nil {
		return nil, err
	}

	return &ApprovalResult{Event: event, Account: account}, nil
}

// feeTx deducts |amount| from the balance and records a negative fee event.
// totalProfit is left untouched.
func (uc *LedgerUseCase) feeTx(ctx context.Context, tx Transaction, accountID string, amount decimal.Decimal) (*ApprovalResult, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	before := account.Clone()
	signed := account.ApplyFee(amount)

	event, err := uc.appendCompletedTx(ctx, tx, account, signed, domain.EventKindFee)
	if err != nil {
		return nil, err
	}
	if err := uc.saveAccountTx(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := uc.audit.record(ctx, tx, domain.AuditActionChargeFee, domain.AggregateTypeAccount, account.ID, before, account); err != nil {
		return nil, err
	}

	return &ApprovalResult{Event: event, Account: account}, nil
}

// resetTx zeroes an account. With onlyFlagged it leaves unflagged accounts
// untouched and reports changed=false.
func (uc *LedgerUseCase) resetTx(ctx context.Context, tx Transaction, accountID string, onlyFlagged bool) (*domain.Account, bool, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, false, err
	}

	if onlyFlagged && !account.TestFlag {
		return account, false, nil
	}

	before := account.Clone()
	account.Reset()

	if err := uc.saveAccountTxAs(ctx, tx, account, domain.EventTypeAccountReset); err != nil {
		return nil, false, err
	}
	if err := uc.audit.record(ctx, tx, domain.AuditActionAccountReset, domain.AggregateTypeAccount, account.ID, before, account); err != nil {
		return nil, false, err
	}

	return account, true, nil
}

func (uc *LedgerUseCase) appendCompletedTx(ctx context.Context, tx Transaction, account *domain.Account, amount decimal.Decimal, kind domain.EventKind) (*domain.LedgerEvent, error) {
	now := uc.now()
	event := &domain.LedgerEvent{
		ID:         uc.idGen.Generate(),
		AccountID:  account.ID,
		UserEmail:  account.Email,
		Coin:       domain.DefaultCoin,
		AmountCoin: amount,
		AmountUSD:  amount,
		Kind:       kind,
		Status:     domain.EventStatusCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.eventRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	err := uc.outbox.emit(ctx, tx, domain.AggregateTypeLedgerEvent, event.ID,
		domain.EventTypeLedgerEventCreated, event.AccountID, domain.LedgerEventPayload(event), now)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// transitionTx validates next against the transition table, then writes it
// with a compare-and-set on the current status.
func (uc *LedgerUseCase) transitionTx(ctx context.Context, tx Transaction, event *domain.LedgerEvent, next domain.EventStatus) error {
	from := event.Status
	if err := event.TransitionTo(next, uc.now()); err != nil {
		return err
	}

	if err := uc.eventRepo.UpdateStatus(ctx, tx, event.ID, from, next, event.UpdatedAt); err != nil {
		event.Status = from
		return err
	}

	payload := domain.LedgerEventPayload(event)
	payload["previous_status"] = string(from)

	return uc.outbox.emit(ctx, tx, domain.AggregateTypeLedgerEvent, event.ID,
		domain.EventTypeLedgerEventUpdated, event.AccountID, payload, event.UpdatedAt)
}

func (uc *LedgerUseCase) saveAccountTx(ctx context.Context, tx Transaction, account *domain.Account) error {
	return uc.saveAccountTxAs(ctx, tx, account, domain.EventTypeAccountUpdated)
}

func (uc *LedgerUseCase) saveAccountTxAs(ctx context.Context, tx Transaction, account *domain.Account, eventType string) error {
	account.UpdatedAt = uc.now()
	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return err
	}

	return uc.outbox.emit(ctx, tx, domain.AggregateTypeAccount, account.ID,
		eventType, account.ID, domain.AccountPayload(account), account.UpdatedAt)
}

func (uc *LedgerUseCase) observeTransition(event *domain.LedgerEvent, start time.Time) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.LedgerTransitions.WithLabelValues(string(event.Kind), string(event.Status)).Inc()
	uc.metrics.LedgerDuration.Observe(time.Since(start).Seconds())
	if event.Status == domain.EventStatusCompleted {
		amount, _ := event.AmountUSD.Abs().Float64()
		uc.metrics.LedgerAmountUSD.Observe(amount)
	}
}

func (uc *LedgerUseCase) countError(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.LedgerErrors.WithLabelValues(errorType(err)).Inc()
}
