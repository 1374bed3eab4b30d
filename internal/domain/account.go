package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the per-user portfolio record.
type Account struct {
	ID           string
	Email        string
	Balance      decimal.Decimal
	TotalDeposit decimal.Decimal
	TotalProfit  decimal.Decimal
	Holdings     map[string]decimal.Decimal
	TestFlag     bool
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount returns a zeroed account for a user.
func NewAccount(id, email string, now time.Time) *Account {
	return &Account{
		ID:           id,
		Email:        email,
		Balance:      decimal.Zero,
		TotalDeposit: decimal.Zero,
		TotalProfit:  decimal.Zero,
		Holdings:     map[string]decimal.Decimal{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Holding returns the held quantity of coin, zero if absent.
func (a *Account) Holding(coin string) decimal.Decimal {
	if a.Holdings == nil {
		return decimal.Zero
	}
	return a.Holdings[coin]
}

// CreditDeposit applies an approved deposit.
func (a *Account) CreditDeposit(coin string, amountCoin, amountUSD decimal.Decimal) {
	a.Balance = a.Balance.Add(amountUSD)
	a.TotalDeposit = a.TotalDeposit.Add(amountUSD)
	a.setHolding(coin, a.Holding(coin).Add(amountCoin))
}

// DebitWithdrawal applies an approved withdrawal. Holdings are floored at
// zero; the balance is allowed to go negative.
func (a *Account) DebitWithdrawal(coin string, amountCoin, amountUSD decimal.Decimal) {
	a.Balance = a.Balance.Sub(amountUSD)

	remaining := a.Holding(coin).Sub(amountCoin)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	a.setHolding(coin, remaining)
}

// ApplyProfit moves both balance and totalProfit by amount (which may be negative).
func (a *Account) ApplyProfit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
	a.TotalProfit = a.TotalProfit.Add(amount)
}

// ApplyFee deducts |amount| from the balance only.
func (a *Account) ApplyFee(amount decimal.Decimal) decimal.Decimal {
	fee := amount.Abs()
	a.Balance = a.Balance.Sub(fee)
	return fee.Neg()
}

// SetBalance overwrites the balance and returns the signed delta.
func (a *Account) SetBalance(balance decimal.Decimal) decimal.Decimal {
	delta := balance.Sub(a.Balance)
	a.Balance = balance
	return delta
}

// Reset zeroes all money fields and clears holdings.
func (a *Account) Reset() {
	a.Balance = decimal.Zero
	a.TotalDeposit = decimal.Zero
	a.TotalProfit = decimal.Zero
	a.Holdings = map[string]decimal.Decimal{}
}

// IsZero reports whether the account carries no value at all.
func (a *Account) IsZero() bool {
	if !a.Balance.IsZero() || !a.TotalDeposit.IsZero() || !a.TotalProfit.IsZero() {
		return false
	}
	for _, qty := range a.Holdings {
		if !qty.IsZero() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, used for audit before-state snapshots.
func (a *Account) Clone() *Account {
	c := *a
	c.Holdings = make(map[string]decimal.Decimal, len(a.Holdings))
	for coin, qty := range a.Holdings {
		c.Holdings[coin] = qty
	}
	return &c
}

func (a *Account) setHolding(coin string, qty decimal.Decimal) {
	if a.Holdings == nil {
		a.Holdings = map[string]decimal.Decimal{}
	}
	a.Holdings[coin] = qty
}
