package domain

import (
	"errors"
	"fmt"
)

var (
	// Error classes
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrForbidden           = errors.New("forbidden")
	ErrPartialFailure      = errors.New("partial failure")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Account errors
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)

	// Ledger event errors
	ErrLedgerEventNotFound = fmt.Errorf("ledger event %w", ErrNotFound)
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrInvalidKind         = fmt.Errorf("%w: invalid event kind", ErrInvalidInput)
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrStatusConflict      = errors.New("ledger event status changed concurrently")
	ErrNotWithdrawable     = errors.New("only completed deposits can be withdrawn")
	ErrLockPeriodActive    = errors.New("deposit is still inside its lock period")

	// Batch errors
	ErrBatchJobNotFound     = fmt.Errorf("batch job %w", ErrNotFound)
	ErrBatchJobNotResumable = errors.New("batch job is not resumable")
	ErrConfirmationRequired = fmt.Errorf("%w: confirmation required", ErrInvalidInput)
	ErrUnsupportedBatchKind = fmt.Errorf("%w: unsupported batch kind", ErrInvalidInput)

	// Linked address errors
	ErrAddressNotFound  = fmt.Errorf("linked address %w", ErrNotFound)
	ErrInvalidAddress   = fmt.Errorf("%w: invalid address", ErrInvalidInput)
	ErrUnsupportedChain = fmt.Errorf("%w: unsupported blockchain", ErrInvalidInput)
	ErrAddressNotOwned  = fmt.Errorf("%w: address belongs to another user", ErrForbidden)

	// Support errors
	ErrMessageNotFound = fmt.Errorf("message %w", ErrNotFound)
	ErrInvalidMessage  = fmt.Errorf("%w: invalid message", ErrInvalidInput)
)

// UpstreamError reports a failed call to a market-data or explorer API.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is makes every UpstreamError match ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// NewUpstreamError wraps err unless it already is an UpstreamError.
func NewUpstreamError(source string, err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Source: source, Err: err}
}

// PartialFailureError is returned by batch jobs in which some items failed.
type PartialFailureError struct {
	Job *BatchJob
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("batch job %s: %d of %d items failed", e.Job.ID, e.Job.Failed, e.Job.Processed)
}

func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}
