package marketdata

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
)

// Solana reads balances and recent signatures over JSON-RPC.
type Solana struct {
	client *rpc.Client
	limit  int
	up     *upstream
}

func NewSolana(endpoint string, opts Options) *Solana {
	if endpoint == "" {
		endpoint = rpc.MainNetBeta.RPC
	}
	return &Solana{
		client: rpc.New(endpoint),
		limit:  defaultTxLimit,
		up:     newUpstream("solana-rpc", opts),
	}
}

func (s *Solana) Chain() domain.Chain { return domain.ChainSolana }

func (s *Solana) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAddress, err)
	}
	return nil
}

// Activity returns the balance in SOL and the latest signatures. Signature
// listings carry no amounts, so those transactions have a zero amount and
// an unknown direction.
func (s *Solana) Activity(ctx context.Context, address string) (*domain.AddressActivity, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAddress, err)
	}

	var balance *rpc.GetBalanceResult
	err = s.up.guard(ctx, func(ctx context.Context) error {
		var err error
		balance, err = s.client.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
		return err
	})
	if err != nil {
		return nil, err
	}

	limit := s.limit
	var signatures []*rpc.TransactionSignature
	err = s.up.guard(ctx, func(ctx context.Context) error {
		var err error
		signatures, err = s.client.GetSignaturesForAddressWithOpts(ctx, pubkey, &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentFinalized,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	activity := &domain.AddressActivity{
		Chain:        domain.ChainSolana,
		Address:      address,
		Balance:      decimal.New(int64(balance.Value), -9),
		Transactions: make([]domain.ChainTransaction, 0, len(signatures)),
	}
	for _, sig := range signatures {
		tx := domain.ChainTransaction{
			Hash:      sig.Signature.String(),
			Amount:    decimal.Zero,
			Direction: domain.TxDirectionUnknown,
		}
		if sig.BlockTime != nil {
			tx.Time = sig.BlockTime.Time().UTC()
		}
		activity.Transactions = append(activity.Transactions, tx)
	}

	return activity, nil
}
