package usecase

import (
	"errors"

	"github.com/iho/coinledger/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// errorType buckets err into a low-cardinality metric label.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, domain.ErrStatusConflict):
		return "status_conflict"
	case errors.Is(err, domain.ErrNotWithdrawable):
		return "not_withdrawable"
	case errors.Is(err, domain.ErrLockPeriodActive):
		return "lock_period_active"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "internal"
	}
}

// isSkippable reports whether a batch item error means another actor already
// moved the target, as opposed to a real failure.
func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrIllegalTransition) || errors.Is(err, domain.ErrStatusConflict)
}
