package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

// CreateLedgerEventRequest represents the request body for filing a ledger event.
type CreateLedgerEventRequest struct {
	AccountID     string `json:"accountId"`
	Coin          string `json:"coin"`
	AmountCoin    string `json:"amountCoin"`
	AmountUSD     string `json:"amountUsd"`
	Kind          string `json:"kind"`
	SourceEventID string `json:"sourceEventId,omitempty"`
}

// ToUseCaseInput converts the request to use case input.
func (r *CreateLedgerEventRequest) ToUseCaseInput() (usecase.CreateEventInput, error) {
	kind := domain.EventKindDeposit
	if r.Kind != "" {
		parsed, err := domain.ParseEventKind(r.Kind)
		if err != nil {
			return usecase.CreateEventInput{}, err
		}
		kind = parsed
	}

	amountCoin, err := parseOptionalAmount(r.AmountCoin, "amountCoin")
	if err != nil {
		return usecase.CreateEventInput{}, err
	}
	amountUSD, err := parseOptionalAmount(r.AmountUSD, "amountUsd")
	if err != nil {
		return usecase.CreateEventInput{}, err
	}

	return usecase.CreateEventInput{
		AccountID:     r.AccountID,
		Coin:          strings.TrimSpace(r.Coin),
		AmountCoin:    amountCoin,
		AmountUSD:     amountUSD,
		Kind:          kind,
		SourceEventID: r.SourceEventID,
	}, nil
}

// AdjustProfitRequest represents a single-account profit or fee adjustment.
type AdjustProfitRequest struct {
	Amount string `json:"amount"`
	Kind   string `json:"kind,omitempty"`
}

// ToUseCaseInput converts the request to use case input.
func (r *AdjustProfitRequest) ToUseCaseInput(accountID string) (usecase.AdjustProfitInput, error) {
	amount, err := parseAmount(r.Amount, "amount")
	if err != nil {
		return usecase.AdjustProfitInput{}, err
	}

	input := usecase.AdjustProfitInput{AccountID: accountID, Amount: amount}
	if r.Kind != "" {
		kind, err := domain.ParseEventKind(r.Kind)
		if err != nil {
			return usecase.AdjustProfitInput{}, err
		}
		input.Kind = kind
	}
	return input, nil
}

// BatchRequest starts a bulk job. Amount is only read by global profit and fee.
type BatchRequest struct {
	Amount  string `json:"amount,omitempty"`
	Confirm bool   `json:"confirm"`
}

// ToUseCaseInput converts the request to use case input.
func (r *BatchRequest) ToUseCaseInput(kind domain.BatchKind) (usecase.StartJobInput, error) {
	input := usecase.StartJobInput{Kind: kind, Confirm: r.Confirm}
	if kind.NeedsAmount() {
		amount, err := parseAmount(r.Amount, "amount")
		if err != nil {
			return usecase.StartJobInput{}, err
		}
		input.Amount = amount
	}
	return input, nil
}

// ConfirmRequest guards destructive operations that take no other parameters.
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// SetBalanceRequest represents a manual balance edit.
type SetBalanceRequest struct {
	Balance string `json:"balance"`
}

// ParseBalance returns the requested balance.
func (r *SetBalanceRequest) ParseBalance() (decimal.Decimal, error) {
	return parseAmount(r.Balance, "balance")
}

// SetTestFlagRequest toggles the test account marker.
type SetTestFlagRequest struct {
	TestFlag bool `json:"testFlag"`
}

// ResetAccountRequest represents a per-user reset.
type ResetAccountRequest struct {
	Confirm     bool `json:"confirm"`
	PurgeEvents bool `json:"purgeEvents"`
}

// ToUseCaseInput converts the request to use case input.
func (r *ResetAccountRequest) ToUseCaseInput(accountID string) usecase.ResetAccountInput {
	return usecase.ResetAccountInput{
		AccountID:   accountID,
		Confirm:     r.Confirm,
		PurgeEvents: r.PurgeEvents,
	}
}

// LinkAddressRequest links a blockchain address to an account.
type LinkAddressRequest struct {
	Blockchain string `json:"blockchain"`
	Address    string `json:"address"`
}

// ToUseCaseInput converts the request to use case input.
func (r *LinkAddressRequest) ToUseCaseInput(userID string) usecase.LinkAddressInput {
	return usecase.LinkAddressInput{
		UserID:  userID,
		Chain:   r.Blockchain,
		Address: r.Address,
	}
}

// MessageRequest carries a support chat message.
type MessageRequest struct {
	Text string `json:"text"`
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", domain.ErrInvalidAmount, field)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", domain.ErrInvalidAmount, field, err)
	}
	return amount, nil
}

func parseOptionalAmount(raw, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw, field)
}
