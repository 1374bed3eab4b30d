package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coinledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// CreateIfNotExists inserts the account unless it already exists and
// returns the stored row.
func (r *AccountRepository) CreateIfNotExists(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	holdings, err := marshalHoldings(account.Holdings)
	if err != nil {
		return nil, fmt.Errorf("encode holdings: %w", err)
	}

	err = r.queries.CreateAccountIfNotExists(ctx, generated.CreateAccountIfNotExistsParams{
		ID:           account.ID,
		Email:        account.Email,
		Balance:      decimalToNumeric(account.Balance),
		TotalDeposit: decimalToNumeric(account.TotalDeposit),
		TotalProfit:  decimalToNumeric(account.TotalProfit),
		Holdings:     holdings,
		TestFlag:     account.TestFlag,
		Version:      account.Version,
		CreatedAt:    timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, account.ID)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row)
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row)
}

// Update writes the money fields, holdings and test flag. The stored version
// is bumped and copied back onto account.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	holdings, err := marshalHoldings(account.Holdings)
	if err != nil {
		return fmt.Errorf("encode holdings: %w", err)
	}

	version, err := queries.UpdateAccount(ctx, generated.UpdateAccountParams{
		ID:           account.ID,
		Balance:      decimalToNumeric(account.Balance),
		TotalDeposit: decimalToNumeric(account.TotalDeposit),
		TotalProfit:  decimalToNumeric(account.TotalProfit),
		Holdings:     holdings,
		TestFlag:     account.TestFlag,
		UpdatedAt:    timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAccountNotFound
		}

		return err
	}

	account.Version = version
	return nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  rowLimit(limit),
		Offset: rowOffset(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		account, err := rowToAccount(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// ListIDsAfter pages account IDs for batch jobs.
func (r *AccountRepository) ListIDsAfter(ctx context.Context, afterID string, testOnly bool, limit int) ([]string, error) {
	return r.queries.ListAccountIDsAfter(ctx, generated.ListAccountIDsAfterParams{
		AfterID:  afterID,
		TestOnly: testOnly,
		RowLimit: rowLimit(limit),
	})
}

func rowToAccount(row generated.Account) (*domain.Account, error) {
	holdings, err := unmarshalHoldings(row.Holdings)
	if err != nil {
		return nil, fmt.Errorf("decode holdings of account %s: %w", row.ID, err)
	}

	return &domain.Account{
		ID:           row.ID,
		Email:        row.Email,
		Balance:      numericToDecimal(row.Balance),
		TotalDeposit: numericToDecimal(row.TotalDeposit),
		TotalProfit:  numericToDecimal(row.TotalProfit),
		Holdings:     holdings,
		TestFlag:     row.TestFlag,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}, nil
}
