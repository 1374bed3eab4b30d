package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/postgres/generated"
)

// LinkedAddressRepository implements usecase.LinkedAddressRepository.
type LinkedAddressRepository struct {
	queries *generated.Queries
}

// NewLinkedAddressRepository creates a new LinkedAddressRepository.
func NewLinkedAddressRepository(db generated.DBTX) *LinkedAddressRepository {
	return &LinkedAddressRepository{queries: generated.New(db)}
}

// Create links an address. Linking the same address twice for a user is an
// invalid input.
func (r *LinkedAddressRepository) Create(ctx context.Context, address *domain.LinkedAddress) error {
	err := r.queries.CreateLinkedAddress(ctx, generated.CreateLinkedAddressParams{
		ID:         address.ID,
		UserID:     address.UserID,
		Chain:      string(address.Chain),
		Address:    address.Address,
		Balance:    decimalToNumeric(address.Balance),
		BalanceUsd: decimalToNumeric(address.BalanceUSD),
		CreatedAt:  timeToPgTimestamptz(address.CreatedAt),
		UpdatedAt:  timeToPgTimestamptz(address.UpdatedAt),
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: %s address already linked", domain.ErrInvalidAddress, address.Chain)
	}

	return err
}

// GetByID retrieves a linked address by ID.
func (r *LinkedAddressRepository) GetByID(ctx context.Context, id string) (*domain.LinkedAddress, error) {
	row, err := r.queries.GetLinkedAddressByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}

		return nil, err
	}

	return rowToLinkedAddress(row), nil
}

// ListByUser lists a user's addresses in link order.
func (r *LinkedAddressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.LinkedAddress, error) {
	rows, err := r.queries.ListLinkedAddressesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	addresses := make([]*domain.LinkedAddress, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, rowToLinkedAddress(row))
	}

	return addresses, nil
}

// UpdateBalance stores a refreshed on-chain balance.
func (r *LinkedAddressRepository) UpdateBalance(ctx context.Context, id string, balance, balanceUSD decimal.Decimal, updatedAt time.Time) error {
	affected, err := r.queries.UpdateLinkedAddressBalance(ctx, generated.UpdateLinkedAddressBalanceParams{
		ID:         id,
		Balance:    decimalToNumeric(balance),
		BalanceUsd: decimalToNumeric(balanceUSD),
		UpdatedAt:  timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAddressNotFound
	}

	return nil
}

// Delete unlinks one address.
func (r *LinkedAddressRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteLinkedAddress(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAddressNotFound
	}

	return nil
}

// DeleteByUser unlinks every address of a user.
func (r *LinkedAddressRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.queries.DeleteLinkedAddressesByUser(ctx, userID)
}

func rowToLinkedAddress(row generated.LinkedAddress) *domain.LinkedAddress {
	return &domain.LinkedAddress{
		ID:         row.ID,
		UserID:     row.UserID,
		Chain:      domain.Chain(row.Chain),
		Address:    row.Address,
		Balance:    numericToDecimal(row.Balance),
		BalanceUSD: numericToDecimal(row.BalanceUsd),
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
