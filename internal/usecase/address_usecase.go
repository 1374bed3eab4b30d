package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coinledger/internal/domain"
)

// AddressUseCase manages the addresses a user watches on public chains.
type AddressUseCase struct {
	addressRepo LinkedAddressRepository
	market      *MarketUseCase
	idGen       IDGenerator
	logger      zerolog.Logger
}

// NewAddressUseCase creates a new AddressUseCase.
func NewAddressUseCase(addressRepo LinkedAddressRepository, market *MarketUseCase, idGen IDGenerator, logger zerolog.Logger) *AddressUseCase {
	return &AddressUseCase{
		addressRepo: addressRepo,
		market:      market,
		idGen:       idGen,
		logger:      logger.With().Str("component", "addresses").Logger(),
	}
}

// LinkAddressInput represents input for linking an address.
type LinkAddressInput struct {
	UserID  string
	Chain   string
	Address string
}

// Link validates and stores an address, then fetches its balance on a
// best-effort basis: upstream failures leave a zero balance.
func (uc *AddressUseCase) Link(ctx context.Context, input LinkAddressInput) (*domain.LinkedAddress, error) {
	if err := checkOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	chain, err := uc.market.ValidateAddress(input.Chain, input.Address)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	address := &domain.LinkedAddress{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		Chain:     chain,
		Address:   strings.TrimSpace(input.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}

	if err := uc.refresh(ctx, address); err != nil {
		uc.logger.Warn().Err(err).Str("address_id", address.ID).Msg("initial balance fetch failed")
	}

	return address, nil
}

// List returns the addresses a user has linked.
func (uc *AddressUseCase) List(ctx context.Context, userID string) ([]*domain.LinkedAddress, error) {
	if err := checkOwner(ctx, userID); err != nil {
		return nil, err
	}
	return uc.addressRepo.ListByUser(ctx, userID)
}

// Unlink removes one address owned by userID.
func (uc *AddressUseCase) Unlink(ctx context.Context, userID, addressID string) error {
	if _, err := uc.owned(ctx, userID, addressID); err != nil {
		return err
	}
	return uc.addressRepo.Delete(ctx, addressID)
}

// UnlinkAll removes every address of a user.
func (uc *AddressUseCase) UnlinkAll(ctx context.Context, userID string) (int64, error) {
	if err := checkOwner(ctx, userID); err != nil {
		return 0, err
	}
	return uc.addressRepo.DeleteByUser(ctx, userID)
}

// Refresh re-reads the on-chain balance and its USD value.
func (uc *AddressUseCase) Refresh(ctx context.Context, userID, addressID string) (*domain.LinkedAddress, error) {
	address, err := uc.owned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if err := uc.refresh(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (uc *AddressUseCase) owned(ctx context.Context, userID, addressID string) (*domain.LinkedAddress, error) {
	if err := checkOwner(ctx, userID); err != nil {
		return nil, err
	}

	address, err := uc.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, domain.ErrAddressNotOwned
	}
	return address, nil
}

func (uc *AddressUseCase) refresh(ctx context.Context, address *domain.LinkedAddress) error {
	activity, err := uc.market.AddressActivity(ctx, string(address.Chain), address.Address)
	if err != nil {
		return err
	}

	symbol := address.Chain.Symbol()
	prices, err := uc.market.SpotPrices(ctx, []string{symbol})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	balanceUSD := activity.Balance.Mul(prices[symbol].USD)
	if err := uc.addressRepo.UpdateBalance(ctx, address.ID, activity.Balance, balanceUSD, now); err != nil {
		return err
	}

	address.Balance = activity.Balance
	address.BalanceUSD = balanceUSD
	address.UpdatedAt = now
	return nil
}

// checkOwner refuses callers that are neither userID nor an admin. Calls
// without an authenticated user are trusted.
func checkOwner(ctx context.Context, userID string) error {
	if err := domain.ValidateID(userID); err != nil {
		return err
	}
	if user, ok := domain.UserFromContext(ctx); ok && !user.CanAccessAccount(userID) {
		return domain.ErrForbidden
	}
	return nil
}
