package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

func TestReconcileAccount_AfterLedgerActivity(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture()
	f.seedAccount("acc-1", "0")
	f.seedEvent(&domain.LedgerEvent{
		ID: "dep-old", AccountID: "acc-1", Coin: "BTC", AmountCoin: dec("0.01"), AmountUSD: dec("400"),
		Kind: domain.EventKindDeposit, Status: domain.EventStatusPending, CreatedAt: time.Now().UTC().AddDate(-2, 0, 0),
	})
	f.seedEvent(&domain.LedgerEvent{
		ID: "dep-new", AccountID: "acc-1", Coin: "ETH", AmountCoin: dec("1"), AmountUSD: dec("3000"),
		Kind: domain.EventKindDeposit, Status: domain.EventStatusPending,
	})
	f.seedEvent(&domain.LedgerEvent{
		ID: "dep-bad", AccountID: "acc-1", AmountUSD: dec("999"),
		Kind: domain.EventKindDeposit, Status: domain.EventStatusPending,
	})

	ctx := context.Background()
	steps := []func() error{
		func() error { _, err := f.ledger.ApproveEvent(ctx, "dep-old"); return err },
		func() error { _, err := f.ledger.ApproveEvent(ctx, "dep-new"); return err },
		func() error { _, err := f.ledger.RejectEvent(ctx, "dep-bad"); return err },
		func() error {
			_, err := f.ledger.AdjustProfit(ctx, usecase.AdjustProfitInput{AccountID: "acc-1", Amount: dec("120")})
			return err
		},
		func() error {
			_, err := f.ledger.AdjustProfit(ctx, usecase.AdjustProfitInput{AccountID: "acc-1", Amount: dec("-20")})
			return err
		},
		func() error { _, err := f.ledger.ApproveWithdrawal(ctx, "dep-old"); return err },
		func() error { _, err := f.accountUseCase().SetBalance(ctx, "acc-1", dec("3000")); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	uc := usecase.NewReconciliationUseCase(f.accounts, f.events)
	result, err := uc.ReconcileAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsReconciled {
		t.Fatalf("expected reconciled, recorded=%s calculated=%s", result.RecordedBalance, result.CalculatedBalance)
	}
	if !result.RecordedBalance.Equal(dec("3000")) {
		t.Errorf("recorded = %s, want 3000", result.RecordedBalance)
	}
	// dep-old, dep-new, profit, fee and the set-balance adjustment.
	if result.EventsCounted != 5 {
		t.Errorf("events counted = %d, want 5", result.EventsCounted)
	}
}

func TestBalanceEffect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   domain.EventKind
		status domain.EventStatus
		want   string
		ok     bool
	}{
		{domain.EventKindDeposit, domain.EventStatusCompleted, "50", true},
		{domain.EventKindDeposit, domain.EventStatusWithdrawn, "0", true},
		{domain.EventKindDeposit, domain.EventStatusPending, "0", false},
		{domain.EventKindDeposit, domain.EventStatusRejected, "0", false},
		{domain.EventKindWithdraw, domain.EventStatusCompleted, "0", false},
		{domain.EventKindFee, domain.EventStatusCompleted, "50", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.kind, tt.status), func(t *testing.T) {
			got, ok := usecase.BalanceEffect(&domain.LedgerEvent{Kind: tt.kind, Status: tt.status, AmountUSD: dec("50")})
			if ok != tt.ok || !got.Equal(dec(tt.want)) {
				t.Fatalf("BalanceEffect = (%s, %v), want (%s, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGenerateReconciliationReport(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture()
	f.seedAccount("acc-1", "100")
	f.seedAccount("acc-2", "70")
	f.seedAccount("acc-3", "0")
	f.seedEvent(&domain.LedgerEvent{ID: "e1", AccountID: "acc-1", AmountUSD: dec("100"), Kind: domain.EventKindDeposit, Status: domain.EventStatusCompleted})
	f.seedEvent(&domain.LedgerEvent{ID: "e2", AccountID: "acc-2", AmountUSD: dec("50"), Kind: domain.EventKindDeposit, Status: domain.EventStatusCompleted})

	uc := usecase.NewReconciliationUseCase(f.accounts, f.events)
	report, err := uc.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != 3 || report.ReconciledAccounts != 2 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.Discrepancies) != 1 || report.Discrepancies[0].AccountID != "acc-2" {
		t.Fatalf("expected acc-2 discrepancy, got %+v", report.Discrepancies)
	}
	if !report.TotalDrift.Equal(dec("20")) {
		t.Errorf("drift = %s, want 20", report.TotalDrift)
	}
}

func TestReconcileAccount_NotFound(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture()
	uc := usecase.NewReconciliationUseCase(f.accounts, f.events)

	if _, err := uc.ReconcileAccount(context.Background(), "ghost"); err == nil {
		t.Fatal("expected error for missing account")
	}
}
