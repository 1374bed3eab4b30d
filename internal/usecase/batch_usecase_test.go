package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

func TestBatchUseCase_GlobalProfit(t *testing.T) {
	f := newLedgerFixture()
	for i := 1; i <= 5; i++ {
		f.seedAccount(fmt.Sprintf("acc-%d", i), "100")
	}
	uc := f.batchUseCase(usecase.BatchConfig{PageSize: 2, Concurrency: 3})

	job, err := uc.StartJob(asAdmin(), usecase.StartJobInput{
		Kind:    domain.BatchKindGlobalProfit,
		Amount:  dec("10"),
		Confirm: true,
	})
	if err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	if job.Status != domain.BatchStatusCompleted || job.Processed != 5 || job.Succeeded != 5 {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.Cursor != "acc-5" {
		t.Errorf("cursor = %q, want acc-5", job.Cursor)
	}
	if job.CreatedBy != "admin-1" {
		t.Errorf("created by = %q, want admin-1", job.CreatedBy)
	}

	for i := 1; i <= 5; i++ {
		acc := f.accounts.Snapshot(fmt.Sprintf("acc-%d", i))
		if !acc.Balance.Equal(dec("110")) || !acc.TotalProfit.Equal(dec("10")) {
			t.Errorf("%s: balance=%s profit=%s", acc.ID, acc.Balance, acc.TotalProfit)
		}
	}

	profits := 0
	for _, e := range f.events.All() {
		if e.Kind == domain.EventKindProfit && e.Status == domain.EventStatusCompleted && e.AmountUSD.Equal(dec("10")) {
			profits++
		}
	}
	if profits != 5 {
		t.Errorf("profit events = %d, want 5", profits)
	}

	stored, err := uc.GetJob(context.Background(), job.ID)
	if err != nil || stored.Status != domain.BatchStatusCompleted || stored.CompletedAt == nil {
		t.Fatalf("stored job not finished: %+v (%v)", stored, err)
	}
	items, _ := uc.ListItems(context.Background(), job.ID, 0, 0)
	if len(items) != 5 {
		t.Errorf("items = %d, want 5", len(items))
	}
	if !slices.Contains(f.outbox.EventTypes(), domain.EventTypeBatchJobFinished) {
		t.Error("batch_job.finished was not emitted")
	}
}

func TestBatchUseCase_GlobalFee(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-1", "100")
	f.seedAccount("acc-2", "3")

	job, err := f.batchUseCase(usecase.BatchConfig{}).StartJob(asAdmin(), usecase.StartJobInput{
		Kind:    domain.BatchKindGlobalFee,
		Amount:  dec("-5"),
		Confirm: true,
	})
	if err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	if job.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", job.Succeeded)
	}

	want := map[string]string{"acc-1": "95", "acc-2": "-2"}
	for id, balance := range want {
		acc := f.accounts.Snapshot(id)
		if !acc.Balance.Equal(dec(balance)) {
			t.Errorf("%s balance = %s, want %s", id, acc.Balance, balance)
		}
		if !acc.TotalProfit.IsZero() {
			t.Errorf("%s totalProfit = %s, fee must not touch it", id, acc.TotalProfit)
		}
	}

	for _, e := range f.events.All() {
		if e.Kind != domain.EventKindFee || !e.AmountUSD.Equal(dec("-5")) {
			t.Errorf("unexpected event %+v", e)
		}
	}
}

func TestBatchUseCase_ResetTestOnlyTouchesFlaggedAccounts(t *testing.T) {
	f := newLedgerFixture()
	flagged := f.seedAccount("acc-1", "100")
	flagged.TestFlag = true
	f.accounts.Seed(flagged)
	f.seedAccount("acc-2", "200")

	job, err := f.batchUseCase(usecase.BatchConfig{}).StartJob(asAdmin(), usecase.StartJobInput{
		Kind:    domain.BatchKindResetTest,
		Confirm: true,
	})
	if err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	if job.Processed != 1 || job.Succeeded != 1 {
		t.Fatalf("unexpected counters: %+v", job)
	}

	if acc := f.accounts.Snapshot("acc-1"); !acc.IsZero() || !acc.TestFlag {
		t.Errorf("flagged account should be zeroed and keep its flag: %+v", acc)
	}
	if acc := f.accounts.Snapshot("acc-2"); !acc.Balance.Equal(dec("200")) {
		t.Errorf("unflagged account changed: %s", acc.Balance)
	}
}

func TestBatchUseCase_BulkApproveAndReject(t *testing.T) {
	tests := []struct {
		name          string
		kind          domain.BatchKind
		wantStatus    domain.EventStatus
		wantBalance   string
		wantSucceeded int
	}{
		{name: "approve", kind: domain.BatchKindBulkApprove, wantStatus: domain.EventStatusCompleted, wantBalance: "30", wantSucceeded: 2},
		{name: "reject", kind: domain.BatchKindBulkReject, wantStatus: domain.EventStatusRejected, wantBalance: "0", wantSucceeded: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedAccount("user-1", "0")
			f.seedEvent(&domain.LedgerEvent{ID: "e1", AccountID: "user-1", AmountUSD: dec("10"), Kind: domain.EventKindDeposit, Status: domain.EventStatusPending})
			f.seedEvent(&domain.LedgerEvent{ID: "e2", AccountID: "user-1", AmountUSD: dec("20"), Kind: domain.EventKindDeposit, Status: domain.EventStatusPending})
			f.seedEvent(&domain.LedgerEvent{ID: "e3", AccountID: "user-1", AmountUSD: dec("40"), Kind: domain.EventKindDeposit, Status: domain.EventStatusRejected})

			job, err := f.batchUseCase(usecase.BatchConfig{PageSize: 1}).StartJob(asAdmin(), usecase.StartJobInput{
				Kind:    tt.kind,
				Confirm: true,
			})
			if err != nil {
				t.Fatalf("StartJob: %v", err)
			}
			if job.Succeeded != tt.wantSucceeded || job.Processed != tt.wantSucceeded {
				t.Fatalf("unexpected counters: %+v", job)
			}

			for _, id := range []string{"e1", "e2"} {
				if got := f.event(id).Status; got != tt.wantStatus {
					t.Errorf("%s status = %s, want %s", id, got, tt.wantStatus)
				}
			}
			if got := f.event("e3").Status; got != domain.EventStatusRejected {
				t.Errorf("non-pending event was touched: %s", got)
			}
			if acc := f.accounts.Snapshot("user-1"); !acc.Balance.Equal(dec(tt.wantBalance)) {
				t.Errorf("balance = %s, want %s", acc.Balance, tt.wantBalance)
			}
		})
	}
}

func TestBatchUseCase_StartJobValidation(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.StartJobInput
		expectedErr error
	}{
		{
			name:        "confirmation required",
			input:       usecase.StartJobInput{Kind: domain.BatchKindResetAll},
			expectedErr: domain.ErrConfirmationRequired,
		},
		{
			name:        "unknown kind",
			input:       usecase.StartJobInput{Kind: "wipe_everything", Confirm: true},
			expectedErr: domain.ErrUnsupportedBatchKind,
		},
		{
			name:        "profit needs an amount",
			input:       usecase.StartJobInput{Kind: domain.BatchKindGlobalProfit, Confirm: true},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name:        "amount over the limit",
			input:       usecase.StartJobInput{Kind: domain.BatchKindGlobalFee, Amount: dec("1e20"), Confirm: true},
			expectedErr: domain.ErrAmountTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedAccount("acc-1", "100")

			job, err := f.batchUseCase(usecase.BatchConfig{}).StartJob(asAdmin(), tt.input)
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
			if job != nil {
				t.Fatalf("no job should be created, got %+v", job)
			}
			if acc := f.accounts.Snapshot("acc-1"); !acc.Balance.Equal(dec("100")) {
				t.Fatalf("account changed: %s", acc.Balance)
			}
		})
	}
}

func TestBatchUseCase_PartialFailure(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-a", "10")
	f.seedAccount("acc-b", "10")
	f.seedAccount("acc-c", "10")

	broken := errors.New("row lock timeout")
	f.accounts.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
		if id == "acc-b" {
			return nil, broken
		}
		return f.accounts.GetByID(ctx, id)
	}

	uc := f.batchUseCase(usecase.BatchConfig{})
	job, err := uc.StartJob(asAdmin(), usecase.StartJobInput{
		Kind:    domain.BatchKindGlobalProfit,
		Amount:  dec("1"),
		Confirm: true,
	})

	var partial *domain.PartialFailureError
	if !errors.As(err, &partial) || !errors.Is(err, domain.ErrPartialFailure) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if job.Status != domain.BatchStatusPartial || job.Succeeded != 2 || job.Failed != 1 {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.LastError == "" {
		t.Error("last error should name the failed target")
	}

	if acc := f.accounts.Snapshot("acc-b"); !acc.Balance.Equal(dec("10")) {
		t.Errorf("failed target changed: %s", acc.Balance)
	}
	for _, id := range []string{"acc-a", "acc-c"} {
		if acc := f.accounts.Snapshot(id); !acc.Balance.Equal(dec("11")) {
			t.Errorf("%s balance = %s, want 11", id, acc.Balance)
		}
	}

	items, _ := uc.ListItems(context.Background(), job.ID, 0, 0)
	for _, item := range items {
		if item.TargetID == "acc-b" && (item.Outcome != domain.BatchOutcomeFailed || item.Error == "") {
			t.Errorf("failed item not recorded: %+v", item)
		}
	}

	if _, err := uc.ResumeJob(context.Background(), job.ID); !errors.Is(err, domain.ErrBatchJobNotResumable) {
		t.Fatalf("partial job must not be resumable, got %v", err)
	}
}

func TestBatchUseCase_ResumeAfterFailure(t *testing.T) {
	f := newLedgerFixture()
	ids := []string{"acc-1", "acc-2", "acc-3", "acc-4", "acc-5"}
	for _, id := range ids {
		f.seedAccount(id, "0")
	}

	listErr := errors.New("connection reset")
	failing := true
	f.accounts.ListIDsAfterFunc = func(ctx context.Context, afterID string, testOnly bool, limit int) ([]string, error) {
		if failing && afterID == "acc-2" {
			return nil, listErr
		}
		var out []string
		for _, id := range ids {
			if id > afterID && len(out) < limit {
				out = append(out, id)
			}
		}
		return out, nil
	}

	uc := f.batchUseCase(usecase.BatchConfig{PageSize: 2, Concurrency: 2})
	job, err := uc.StartJob(asAdmin(), usecase.StartJobInput{
		Kind:    domain.BatchKindGlobalProfit,
		Amount:  dec("5"),
		Confirm: true,
	})
	if !errors.Is(err, listErr) {
		t.Fatalf("expected list failure, got %v", err)
	}

	stored, _ := uc.GetJob(context.Background(), job.ID)
	if stored.Status != domain.BatchStatusFailed || stored.Cursor != "acc-2" || stored.Succeeded != 2 {
		t.Fatalf("unexpected checkpoint: %+v", stored)
	}

	// acc-3 was applied after the checkpoint but before the crash.
	if _, err := f.ledger.AdjustProfit(context.Background(), usecase.AdjustProfitInput{AccountID: "acc-3", Amount: dec("5")}); err != nil {
		t.Fatalf("AdjustProfit: %v", err)
	}
	if _, err := f.jobs.RecordItem(context.Background(), nil, &domain.BatchItem{
		JobID: job.ID, TargetID: "acc-3", Outcome: domain.BatchOutcomeSucceeded,
	}); err != nil {
		t.Fatalf("RecordItem: %v", err)
	}

	failing = false
	resumed, err := uc.ResumeJob(asAdmin(), job.ID)
	if err != nil {
		t.Fatalf("ResumeJob: %v", err)
	}
	if resumed.Status != domain.BatchStatusCompleted || resumed.Succeeded != 5 || resumed.Processed != 5 {
		t.Fatalf("unexpected resumed job: %+v", resumed)
	}

	for _, id := range ids {
		if acc := f.accounts.Snapshot(id); !acc.Balance.Equal(dec("5")) {
			t.Errorf("%s balance = %s, want 5", id, acc.Balance)
		}
	}
}

func TestBatchUseCase_PurgeLedger(t *testing.T) {
	f := newLedgerFixture()
	f.seedEvent(&domain.LedgerEvent{ID: "e1", AccountID: "user-1", Kind: domain.EventKindDeposit, Status: domain.EventStatusPending})
	f.seedEvent(&domain.LedgerEvent{ID: "e2", AccountID: "user-2", Kind: domain.EventKindDeposit, Status: domain.EventStatusCompleted})
	uc := f.batchUseCase(usecase.BatchConfig{})

	if _, err := uc.PurgeLedger(asAdmin(), false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if len(f.events.All()) != 2 {
		t.Fatal("unconfirmed purge deleted events")
	}

	deleted, err := uc.PurgeLedger(asAdmin(), true)
	if err != nil {
		t.Fatalf("PurgeLedger: %v", err)
	}
	if deleted != 2 || len(f.events.All()) != 0 {
		t.Fatalf("deleted = %d, left = %d", deleted, len(f.events.All()))
	}

	logs, _ := f.audit.List(context.Background(), domain.AuditFilter{Action: string(domain.AuditActionLedgerPurge)})
	if len(logs) != 1 || logs[0].UserID != "admin-1" {
		t.Fatalf("expected purge audit row, got %+v", logs)
	}
}
