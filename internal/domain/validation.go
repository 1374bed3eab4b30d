package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCoin      = fmt.Errorf("%w: invalid coin symbol", ErrInvalidInput)
	ErrAmountTooLarge   = fmt.Errorf("%w: amount exceeds maximum allowed", ErrInvalidInput)
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidIDFormat  = fmt.Errorf("%w: invalid ID format", ErrInvalidInput)
	ErrInvalidChartDays = fmt.Errorf("%w: days must be between 1 and 365", ErrInvalidInput)
)

// Validation constants
const (
	MaxIDLength     = 128
	MaxCoinLength   = 10
	MaxEventAmount  = "1000000000000" // 1 trillion
	MaxChartDays    = 365
	MaxSymbolsQuery = 25
)

var (
	coinRegex  = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)
	idRegex    = regexp.MustCompile(`^[A-Za-z0-9_\-.:@]+$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateID validates account, user and event identifiers.
func ValidateID(id string) error {
	if id == "" || len(id) > MaxIDLength || !idRegex.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidIDFormat, id)
	}
	return nil
}

// ValidateCoin validates a coin symbol. Case is preserved as stored.
func ValidateCoin(coin string) error {
	if !coinRegex.MatchString(coin) {
		return fmt.Errorf("%w: %q", ErrInvalidCoin, coin)
	}
	return nil
}

// NormalizeCoin trims the symbol and falls back to DefaultCoin.
func NormalizeCoin(coin string) string {
	coin = strings.TrimSpace(coin)
	if coin == "" {
		return DefaultCoin
	}
	return coin
}

// ValidateAmount rejects amounts whose magnitude exceeds MaxEventAmount.
func ValidateAmount(amount decimal.Decimal) error {
	maxAmount, _ := decimal.NewFromString(MaxEventAmount)
	if amount.Abs().GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxEventAmount)
	}
	return nil
}

// ParseAmount parses a decimal string, mapping failures to ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}

	return d, ValidateAmount(d)
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateChartDays bounds market chart ranges.
func ValidateChartDays(days int) error {
	if days < 1 || days > MaxChartDays {
		return ErrInvalidChartDays
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
