package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCoin is used for events that do not move a specific coin.
const DefaultCoin = "USD"

// EventKind classifies a ledger event.
type EventKind string

const (
	EventKindDeposit    EventKind = "deposit"
	EventKindWithdraw   EventKind = "withdraw"
	EventKindProfit     EventKind = "profit"
	EventKindFee        EventKind = "fee"
	EventKindAdjustment EventKind = "adjustment"
)

// ParseEventKind parses a kind string. "withdrawal" is accepted as an alias
// of "withdraw".
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(strings.ToLower(strings.TrimSpace(s))); k {
	case EventKindDeposit, EventKindWithdraw, EventKindProfit, EventKindFee, EventKindAdjustment:
		return k, nil
	case "withdrawal":
		return EventKindWithdraw, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// EventStatus is the lifecycle state of a ledger event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusCompleted EventStatus = "completed"
	EventStatusRejected  EventStatus = "rejected"
	EventStatusWithdrawn EventStatus = "withdrawn"
)

var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusPending:   {EventStatusCompleted, EventStatusRejected},
	EventStatusCompleted: {EventStatusWithdrawn},
	EventStatusRejected:  nil,
	EventStatusWithdrawn: nil,
}

// ParseEventStatus parses a status string.
func ParseEventStatus(s string) (EventStatus, error) {
	st := EventStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := eventTransitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
	return st, nil
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to EventStatus) bool {
	for _, next := range eventTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist.
func (s EventStatus) IsTerminal() bool {
	return len(eventTransitions[s]) == 0
}

// LedgerEvent is one money movement on an account.
type LedgerEvent struct {
	ID            string
	AccountID     string
	UserEmail     string
	Coin          string
	AmountCoin    decimal.Decimal
	AmountUSD     decimal.Decimal
	Kind          EventKind
	Status        EventStatus
	SourceEventID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the event's static fields.
func (e *LedgerEvent) Validate() error {
	if strings.TrimSpace(e.AccountID) == "" {
		return fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	if err := ValidateCoin(e.Coin); err != nil {
		return err
	}
	if _, err := ParseEventKind(string(e.Kind)); err != nil {
		return err
	}

	switch e.Kind {
	case EventKindDeposit, EventKindWithdraw:
		if !e.AmountUSD.IsPositive() || e.AmountCoin.IsNegative() {
			return fmt.Errorf("%w: %s amounts must be positive", ErrInvalidAmount, e.Kind)
		}
	case EventKindAdjustment:
		if e.Status == EventStatusPending {
			if err := e.CheckCreditable(); err != nil {
				return err
			}
		}
	}

	if e.Kind == EventKindWithdraw && e.SourceEventID == "" {
		return fmt.Errorf("%w: withdraw requires a source deposit", ErrInvalidInput)
	}

	return nil
}

// CheckCreditable rejects negative amounts on events approved through the
// deposit credit path, which only ever grows totalDeposit and holdings.
func (e *LedgerEvent) CheckCreditable() error {
	if e.AmountUSD.IsNegative() || e.AmountCoin.IsNegative() {
		return fmt.Errorf("%w: %s %s cannot credit a negative amount", ErrInvalidAmount, e.Kind, e.ID)
	}
	return nil
}

// TransitionTo moves the event to next, enforcing the transition table.
func (e *LedgerEvent) TransitionTo(next EventStatus, at time.Time) error {
	if !CanTransition(e.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, e.Status, next)
	}
	e.Status = next
	e.UpdatedAt = at
	return nil
}

// MaturesAt is the earliest instant the deposit can be withdrawn.
func (e *LedgerEvent) MaturesAt() time.Time {
	return e.CreatedAt.AddDate(1, 0, 0)
}

// IsMature reports whether the lock window has elapsed at now.
func (e *LedgerEvent) IsMature(now time.Time) bool {
	return !now.Before(e.MaturesAt())
}

// CheckWithdrawable verifies that the event is a matured, completed deposit.
func (e *LedgerEvent) CheckWithdrawable(now time.Time) error {
	if e.Kind != EventKindDeposit {
		return fmt.Errorf("%w: event %s is a %s", ErrNotWithdrawable, e.ID, e.Kind)
	}
	if e.Status != EventStatusCompleted {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, e.Status, EventStatusWithdrawn)
	}
	if !e.IsMature(now) {
		return fmt.Errorf("%w: unlocks at %s", ErrLockPeriodActive, e.MaturesAt().Format(time.RFC3339))
	}
	return nil
}

// LedgerEventFilter narrows event listings.
type LedgerEventFilter struct {
	AccountID string
	Status    EventStatus
	Kind      EventKind
	Limit     int
	Offset    int
}
