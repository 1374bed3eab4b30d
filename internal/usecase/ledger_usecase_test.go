package usecase_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

func TestLedgerUseCase_ApproveDeposit_CreditsOnce(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("user-1", "100")
	f.seedEvent(&domain.LedgerEvent{
		ID: "evt-1", AccountID: "user-1", Coin: "BTC",
		AmountCoin: dec("0.1"), AmountUSD: dec("6000"),
		Kind: domain.EventKindDeposit, Status: domain.EventStatusPending,
	})

	ctx := context.Background()
	result, err := f.ledger.ApproveEvent(ctx, "evt-1")
	if err != nil {
		t.Fatalf("ApproveEvent: %v", err)
	}

	if result.Event.Status != domain.EventStatusCompleted {
		t.Fatalf("event status = %s, want completed", result.Event.Status)
	}

	account := f.accounts.Snapshot("user-1")
	if !account.Balance.Equal(dec("6100")) {
		t.Errorf("balance = %s, want 6100", account.Balance)
	}
	if !account.TotalDeposit.Equal(dec("6000")) {
		t.Errorf("totalDeposit = %s, want 6000", account.TotalDeposit)
	}
	if !account.Holding("BTC").Equal(dec("0.1")) {
		t.Errorf("holdings[BTC] = %s, want 0.1", account.Holding("BTC"))
	}
	if account.Version != 1 {
		t.Errorf("version = %d, want 1", account.Version)
	}

	_, err = f.ledger.ApproveEvent(ctx, "evt-1")
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("re-approve error = %v, want ErrIllegalTransition", err)
	}

	again := f.accounts.Snapshot("user-1")
	if !again.Balance.Equal(account.Balance) || !again.TotalDeposit.Equal(account.TotalDeposit) || !again.Holding("BTC").Equal(dec("0.1")) {
		t.Fatalf("re-approve changed the account: %+v", again)
	}

	types := f.outbox.EventTypes()
	if !slices.Contains(types, domain.EventTypeLedgerEventUpdated) || !slices.Contains(types, domain.EventTypeAccountUpdated) {
		t.Fatalf("expected status change and account update in outbox, got %v", types)
	}
}

func TestLedgerUseCase_ApproveEvent_Failures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(f *ledgerFixture)
		expectedErr error
		wantStatus  domain.EventStatus
	}{
		{
			name: "account missing leaves event pending",
			setup: func(f *ledgerFixture) {
				f.seedEvent(&domain.LedgerEvent{
					ID: "evt-1", AccountID: "ghost", AmountUSD: dec("10"),
					Kind: domain.EventKindDeposit, Status: domain.EventStatusPending,
				})
			},
			expectedErr: domain.ErrAccountNotFound,
			wantStatus:  domain.EventStatusPending,
		},
		{
			name: "rejected event cannot be approved",
			setup: func(f *ledgerFixture) {
				f.seedAccount("user-1", "0")
				f.seedEvent(&domain.LedgerEvent{
					ID: "evt-1", AccountID: "user-1", AmountUSD: dec("10"),
					Kind: domain.EventKindDeposit, Status: domain.EventStatusRejected,
				})
			},
			expectedErr: domain.ErrIllegalTransition,
			wantStatus:  domain.EventStatusRejected,
		},
		{
			name: "lost compare-and-set does not credit",
			setup: func(f *ledgerFixture) {
				f.seedAccount("user-1", "0")
				f.seedEvent(&domain.LedgerEvent{
					ID: "evt-1", AccountID: "user-1", AmountUSD: dec("10"),
					Kind: domain.EventKindDeposit, Status: domain.EventStatusPending,
				})
				f.events.UpdateStatusFunc = func(context.Context, usecase.Transaction, string, domain.EventStatus, domain.EventStatus, time.Time) error {
					return domain.ErrStatusConflict
				}
			},
			expectedErr: domain.ErrStatusConflict,
			wantStatus:  domain.EventStatusPending,
		},
		{
			name:        "unknown event",
			setup:       func(f *ledgerFixture) {},
			expectedErr: domain.ErrLedgerEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			tt.setup(f)

			_, err := f.ledger.ApproveEvent(context.Background(), "evt-1")
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}

			if tt.wantStatus != "" {
				if got := f.event("evt-1").Status; got != tt.wantStatus {
					t.Fatalf("event status = %s, want %s", got, tt.wantStatus)
				}
			}
			if acc := f.accounts.Snapshot("user-1"); acc != nil && !acc.Balance.IsZero() {
				t.Fatalf("account was credited: %s", acc.Balance)
			}
		})
	}
}

func TestLedgerUseCase_RejectEvent(t *testing.T) {
	tests := []struct {
		name        string
		status      domain.EventStatus
		expectedErr error
		wantOutbox  bool
	}{
		{name: "pending is rejected", status: domain.EventStatusPending, wantOutbox: true},
		{name: "rejected again is a no-op", status: domain.EventStatusRejected},
		{name: "completed is refused", status: domain.EventStatusCompleted, expectedErr: domain.ErrIllegalTransition},
		{name: "withdrawn is refused", status: domain.EventStatusWithdrawn, expectedErr: domain.ErrIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedAccount("user-1", "50")
			f.seedEvent(&domain.LedgerEvent{
				ID: "evt-1", AccountID: "user-1", AmountUSD: dec("10"),
				Kind: domain.EventKindDeposit, Status: tt.status,
			})

			event, err := f.ledger.RejectEvent(context.Background(), "evt-1")
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				if got := f.event("evt-1").Status; got != tt.status {
					t.Fatalf("status changed to %s", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.Status != domain.EventStatusRejected {
				t.Fatalf("status = %s, want rejected", event.Status)
			}
			if acc := f.accounts.Snapshot("user-1"); !acc.Balance.Equal(dec("50")) || acc.Version != 0 {
				t.Fatalf("reject touched the account: %+v", acc)
			}
			if got := len(f.outbox.EventTypes()) > 0; got != tt.wantOutbox {
				t.Fatalf("outbox written = %v, want %v", got, tt.wantOutbox)
			}
		})
	}
}

func TestLedgerUseCase_ApproveWithdrawal(t *testing.T) {
	matured := time.Now().UTC().AddDate(-1, 0, -1)

	tests := []struct {
		name        string
		event       *domain.LedgerEvent
		expectedErr error
	}{
		{
			name: "matured deposit floors holdings at zero",
			event: &domain.LedgerEvent{
				ID: "evt-1", AccountID: "user-1", Coin: "ETH",
				AmountCoin: dec("2.0"), AmountUSD: dec("300"),
				Kind: domain.EventKindDeposit, Status: domain.EventStatusCompleted, CreatedAt: matured,
			},
		},
		{
			name: "profit event is not withdrawable",
			event: &domain.LedgerEvent{
				ID: "evt-1", AccountID: "user-1", AmountUSD: dec("300"),
				Kind: domain.EventKindProfit, Status: domain.EventStatusCompleted, CreatedAt: matured,
			},
			expectedErr: domain.ErrNotWithdrawable,
		},
		{
			name: "pending deposit",
			event: &domain.LedgerEvent{
				ID: "evt-1", AccountID: "user-1", Coin: "ETH", AmountUSD: dec("300"),
				Kind: domain.EventKindDeposit, Status: domain.EventStatusPending, CreatedAt: matured,
			},
			expectedErr: domain.ErrIllegalTransition,
		},
		{
			name: "deposit inside lock period",
			event: &domain.LedgerEvent{
				ID: "evt-1", AccountID: "user-1", Coin: "ETH", AmountUSD: dec("300"),
				Kind: domain.EventKindDeposit, Status: domain.EventStatusCompleted,
				CreatedAt: time.Now().UTC().AddDate(0, -11, 0),
			},
			expectedErr: domain.ErrLockPeriodActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			account := domain.NewAccount("user-1", "", time.Now())
			account.Balance = dec("100")
			account.Holdings["ETH"] = dec("0.5")
			f.accounts.Seed(account)
			f.seedEvent(tt.event)

			result, err := f.ledger.ApproveWithdrawal(context.Background(), "evt-1")
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				if acc := f.accounts.Snapshot("user-1"); !acc.Balance.Equal(dec("100")) {
					t.Fatalf("refused withdrawal debited the account: %s", acc.Balance)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Event.Status != domain.EventStatusWithdrawn {
				t.Fatalf("status = %s, want withdrawn", result.Event.Status)
			}

			acc := f.accounts.Snapshot("user-1")
			if !acc.Holding("ETH").IsZero() {
				t.Errorf("holdings[ETH] = %s, want 0", acc.Holding("ETH"))
			}
			if !acc.Balance.Equal(dec("-200")) {
				t.Errorf("balance = %s, want -200", acc.Balance)
			}
		})
	}
}

func TestLedgerUseCase_RequestWithdrawal(t *testing.T) {
	f := newLedgerFixture()
	account := domain.NewAccount("user-1", "u@example.com", time.Now())
	account.Balance = dec("1000")
	account.TotalDeposit = dec("1000")
	account.Holdings["BTC"] = dec("0.02")
	f.accounts.Seed(account)
	f.seedEvent(&domain.LedgerEvent{
		ID: "dep-1", AccountID: "user-1", Coin: "BTC",
		AmountCoin: dec("0.02"), AmountUSD: dec("1000"),
		Kind: domain.EventKindDeposit, Status: domain.EventStatusCompleted,
		CreatedAt: time.Now().UTC().AddDate(-2, 0, 0),
	})

	if _, err := f.ledger.RequestWithdrawal(asUser("intruder"), "dep-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another user, got %v", err)
	}

	request, err := f.ledger.RequestWithdrawal(asUser("user-1"), "dep-1")
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if request.Kind != domain.EventKindWithdraw || request.Status != domain.EventStatusPending || request.SourceEventID != "dep-1" {
		t.Fatalf("unexpected request: %+v", request)
	}
	if !request.AmountUSD.Equal(dec("1000")) || request.Coin != "BTC" {
		t.Fatalf("request should copy the deposit amounts: %+v", request)
	}

	if _, err := f.ledger.RequestWithdrawal(asUser("user-1"), "dep-1"); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected duplicate request to be refused, got %v", err)
	}

	if acc := f.accounts.Snapshot("user-1"); !acc.Balance.Equal(dec("1000")) {
		t.Fatalf("request alone must not debit, balance = %s", acc.Balance)
	}

	result, err := f.ledger.ApproveEvent(asAdmin(), request.ID)
	if err != nil {
		t.Fatalf("approve request: %v", err)
	}
	if result.Event.Status != domain.EventStatusCompleted {
		t.Fatalf("request status = %s, want completed", result.Event.Status)
	}
	if got := f.event("dep-1").Status; got != domain.EventStatusWithdrawn {
		t.Fatalf("deposit status = %s, want withdrawn", got)
	}

	acc := f.accounts.Snapshot("user-1")
	if !acc.Balance.IsZero() || !acc.Holding("BTC").IsZero() {
		t.Fatalf("expected balance and BTC holding to be cashed out, got %+v", acc)
	}
	if !acc.TotalDeposit.Equal(dec("1000")) {
		t.Fatalf("withdrawal must not reduce totalDeposit, got %s", acc.TotalDeposit)
	}
}

func TestLedgerUseCase_AdjustProfit(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.AdjustProfitInput
		wantKind    domain.EventKind
		wantBalance string
		wantProfit  string
		expectedErr error
	}{
		{
			name:        "positive amount is profit",
			input:       usecase.AdjustProfitInput{AccountID: "user-1", Amount: dec("25.5")},
			wantKind:    domain.EventKindProfit,
			wantBalance: "125.5",
			wantProfit:  "25.5",
		},
		{
			name:        "negative amount defaults to fee",
			input:       usecase.AdjustProfitInput{AccountID: "user-1", Amount: dec("-10")},
			wantKind:    domain.EventKindFee,
			wantBalance: "90",
			wantProfit:  "-10",
		},
		{
			name:        "explicit adjustment kind",
			input:       usecase.AdjustProfitInput{AccountID: "user-1", Amount: dec("-10"), Kind: domain.EventKindAdjustment},
			wantKind:    domain.EventKindAdjustment,
			wantBalance: "90",
			wantProfit:  "-10",
		},
		{
			name:        "explicit fee with positive amount still debits",
			input:       usecase.AdjustProfitInput{AccountID: "user-1", Amount: dec("10"), Kind: domain.EventKindFee},
			wantKind:    domain.EventKindFee,
			wantBalance: "90",
			wantProfit:  "-10",
		},
		{
			name:        "deposit kind is refused",
			input:       usecase.AdjustProfitInput{AccountID: "user-1", Amount: dec("10"), Kind: domain.EventKindDeposit},
			expectedErr: domain.ErrInvalidKind,
		},
		{
			name:        "missing account",
			input:       usecase.AdjustProfitInput{AccountID: "nobody", Amount: dec("10")},
			expectedErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedAccount("user-1", "100")

			result, err := f.ledger.AdjustProfit(context.Background(), tt.input)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				if n := len(f.events.All()); n != 0 {
					t.Fatalf("expected no events, got %d", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !result.Account.Balance.Equal(dec(tt.wantBalance)) {
				t.Errorf("balance = %s, want %s", result.Account.Balance, tt.wantBalance)
			}
			if !result.Account.TotalProfit.Equal(dec(tt.wantProfit)) {
				t.Errorf("totalProfit = %s, want %s", result.Account.TotalProfit, tt.wantProfit)
			}

			ev := result.Event
			if ev.Kind != tt.wantKind || ev.Status != domain.EventStatusCompleted || ev.Coin != domain.DefaultCoin {
				t.Errorf("unexpected event: %+v", ev)
			}
			if !ev.AmountUSD.Equal(dec(tt.wantProfit)) || !ev.AmountCoin.Equal(dec(tt.wantProfit)) {
				t.Errorf("event amounts = %s/%s, want %s", ev.AmountUSD, ev.AmountCoin, tt.wantProfit)
			}
		})
	}
}

func TestLedgerUseCase_CreateEvent(t *testing.T) {
	tests := []struct {
		name        string
		ctx         context.Context
		input       usecase.CreateEventInput
		wantStatus  domain.EventStatus
		expectedErr error
	}{
		{
			name: "user files a deposit",
			ctx:  asUser("user-1"),
			input: usecase.CreateEventInput{
				AccountID: "user-1", Coin: "BTC", AmountCoin: dec("0.1"), AmountUSD: dec("6000"),
				Kind: domain.EventKindDeposit,
			},
			wantStatus: domain.EventStatusPending,
		},
		{
			name: "blank coin defaults to USD",
			ctx:  context.Background(),
			input: usecase.CreateEventInput{
				AccountID: "user-1", AmountUSD: dec("50"), Kind: domain.EventKindDeposit,
			},
			wantStatus: domain.EventStatusPending,
		},
		{
			name: "profit is applied immediately",
			ctx:  asAdmin(),
			input: usecase.CreateEventInput{
				AccountID: "user-1", AmountUSD: dec("5"), Kind: domain.EventKindProfit,
			},
			wantStatus: domain.EventStatusCompleted,
		},
		{
			name: "users cannot record adjustments",
			ctx:  asUser("user-1"),
			input: usecase.CreateEventInput{
				AccountID: "user-1", AmountUSD: dec("5"), Kind: domain.EventKindAdjustment,
			},
			expectedErr: domain.ErrForbidden,
		},
		{
			name: "users cannot deposit into other accounts",
			ctx:  asUser("user-2"),
			input: usecase.CreateEventInput{
				AccountID: "user-1", AmountUSD: dec("5"), Kind: domain.EventKindDeposit,
			},
			expectedErr: domain.ErrForbidden,
		},
		{
			name: "negative pending adjustment",
			ctx:  asAdmin(),
			input: usecase.CreateEventInput{
				AccountID: "user-1", Coin: "BTC", AmountCoin: dec("-1"), AmountUSD: dec("-500"),
				Kind: domain.EventKindAdjustment,
			},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name: "zero amount deposit",
			ctx:  context.Background(),
			input: usecase.CreateEventInput{
				AccountID: "user-1", AmountUSD: dec("0"), Kind: domain.EventKindDeposit,
			},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name: "unknown account",
			ctx:  context.Background(),
			input: usecase.CreateEventInput{
				AccountID: "ghost", AmountUSD: dec("5"), Kind: domain.EventKindDeposit,
			},
			expectedErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedAccount("user-1", "0")

			event, err := f.ledger.CreateEvent(tt.ctx, tt.input)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if event.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", event.Status, tt.wantStatus)
			}
			if event.UserEmail != "user-1@example.com" {
				t.Errorf("user email = %q, want copied from account", event.UserEmail)
			}
			if tt.input.Coin == "" && event.Coin != domain.DefaultCoin {
				t.Errorf("coin = %q, want %q", event.Coin, domain.DefaultCoin)
			}
			if stored := f.event(event.ID); stored == nil {
				t.Fatal("event was not stored")
			}
		})
	}
}

func TestLedgerUseCase_ApproveEvent_RefusesNegativeCredit(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("user-1", "0")
	f.seedEvent(&domain.LedgerEvent{
		ID: "adj-1", AccountID: "user-1", Coin: "BTC",
		AmountCoin: dec("-1"), AmountUSD: dec("-500"),
		Kind: domain.EventKindAdjustment, Status: domain.EventStatusPending,
	})

	if _, err := f.ledger.ApproveEvent(context.Background(), "adj-1"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	account := f.accounts.Snapshot("user-1")
	if !account.TotalDeposit.IsZero() || !account.Balance.IsZero() || !account.Holding("BTC").IsZero() {
		t.Fatalf("account changed: %+v", account)
	}
	if ev := f.event("adj-1"); ev.Status != domain.EventStatusPending {
		t.Fatalf("status = %s, want pending", ev.Status)
	}
}

func TestLedgerUseCase_ApproveDeposit_PreservesCoinCase(t *testing.T) {
	f := newLedgerFixture()
	account := f.seedAccount("user-1", "0")
	account.Holdings = map[string]decimal.Decimal{"eth": dec("1")}
	f.accounts.Seed(account)

	event, err := f.ledger.CreateEvent(context.Background(), usecase.CreateEventInput{
		AccountID: "user-1", Coin: " eth ", AmountCoin: dec("1"), AmountUSD: dec("3000"),
		Kind: domain.EventKindDeposit,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.Coin != "eth" {
		t.Fatalf("coin = %q, want eth", event.Coin)
	}

	if _, err := f.ledger.ApproveEvent(context.Background(), event.ID); err != nil {
		t.Fatalf("ApproveEvent: %v", err)
	}

	got := f.accounts.Snapshot("user-1")
	if len(got.Holdings) != 1 || !got.Holding("eth").Equal(dec("2")) {
		t.Fatalf("holdings = %v, want map[eth:2]", got.Holdings)
	}
}

func TestLedgerUseCase_ListEvents_ScopesUsers(t *testing.T) {
	f := newLedgerFixture()
	f.seedEvent(&domain.LedgerEvent{ID: "a", AccountID: "user-1", Kind: domain.EventKindDeposit, Status: domain.EventStatusPending})
	f.seedEvent(&domain.LedgerEvent{ID: "b", AccountID: "user-2", Kind: domain.EventKindDeposit, Status: domain.EventStatusPending})

	events, err := f.ledger.ListEvents(asUser("user-1"), domain.LedgerEventFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "a" {
		t.Fatalf("user should only see own events, got %d", len(events))
	}

	if _, err := f.ledger.ListEvents(asUser("user-1"), domain.LedgerEventFilter{AccountID: "user-2"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	all, err := f.ledger.ListEvents(asAdmin(), domain.LedgerEventFilter{Status: domain.EventStatusPending})
	if err != nil || len(all) != 2 {
		t.Fatalf("admin should see both events, got %d (%v)", len(all), err)
	}
}
