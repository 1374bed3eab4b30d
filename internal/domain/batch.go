package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BatchKind names a bulk operation.
type BatchKind string

const (
	BatchKindGlobalProfit BatchKind = "global_profit"
	BatchKindGlobalFee    BatchKind = "global_fee"
	BatchKindResetTest    BatchKind = "reset_test"
	BatchKindResetAll     BatchKind = "reset_all"
	BatchKindBulkApprove  BatchKind = "bulk_approve"
	BatchKindBulkReject   BatchKind = "bulk_reject"
)

// TargetsEvents reports whether the job iterates ledger events rather than accounts.
func (k BatchKind) TargetsEvents() bool {
	return k == BatchKindBulkApprove || k == BatchKindBulkReject
}

// NeedsAmount reports whether the job requires a non-zero amount parameter.
func (k BatchKind) NeedsAmount() bool {
	return k == BatchKindGlobalProfit || k == BatchKindGlobalFee
}

// ParseBatchKind validates a batch kind string.
func ParseBatchKind(s string) (BatchKind, error) {
	switch k := BatchKind(s); k {
	case BatchKindGlobalProfit, BatchKindGlobalFee, BatchKindResetTest,
		BatchKindResetAll, BatchKindBulkApprove, BatchKindBulkReject:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBatchKind, s)
	}
}

// BatchStatus is the lifecycle of a batch job.
type BatchStatus string

const (
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusPartial   BatchStatus = "partial"
	BatchStatusFailed    BatchStatus = "failed"
)

// BatchJob tracks one bulk operation and its checkpoint.
type BatchJob struct {
	ID          string
	Kind        BatchKind
	Amount      decimal.Decimal
	Status      BatchStatus
	Cursor      string
	Processed   int
	Succeeded   int
	Failed      int
	Skipped     int
	LastError   string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Resumable reports whether ResumeJob may continue the job.
func (j *BatchJob) Resumable() bool {
	return j.Status == BatchStatusRunning || j.Status == BatchStatusFailed
}

// Record folds one item outcome into the counters.
func (j *BatchJob) Record(outcome BatchOutcome) {
	j.Processed++
	switch outcome {
	case BatchOutcomeSucceeded:
		j.Succeeded++
	case BatchOutcomeFailed:
		j.Failed++
	case BatchOutcomeSkipped:
		j.Skipped++
	}
}

// Finish sets the terminal status from the counters.
func (j *BatchJob) Finish(at time.Time) {
	j.Status = BatchStatusCompleted
	if j.Failed > 0 {
		j.Status = BatchStatusPartial
	}
	j.UpdatedAt = at
	j.CompletedAt = &at
}

// BatchOutcome is the result of applying a job to one target.
type BatchOutcome string

const (
	BatchOutcomeSucceeded BatchOutcome = "succeeded"
	BatchOutcomeFailed    BatchOutcome = "failed"
	BatchOutcomeSkipped   BatchOutcome = "skipped"
)

// BatchItem is the per-target record of a batch job.
type BatchItem struct {
	JobID     string
	TargetID  string
	Outcome   BatchOutcome
	Error     string
	CreatedAt time.Time
}
