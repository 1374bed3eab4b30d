package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Chain is a supported blockchain.
type Chain string

const (
	ChainBitcoin  Chain = "bitcoin"
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
)

var chainSymbols = map[Chain]string{
	ChainBitcoin:  "BTC",
	ChainEthereum: "ETH",
	ChainSolana:   "SOL",
}

// ParseChain accepts chain names and their ticker symbols.
func ParseChain(s string) (Chain, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "bitcoin", "btc":
		return ChainBitcoin, nil
	case "ethereum", "eth":
		return ChainEthereum, nil
	case "solana", "sol":
		return ChainSolana, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, s)
}

// Symbol is the native coin ticker of the chain.
func (c Chain) Symbol() string {
	return chainSymbols[c]
}

// LinkedAddress is a user's watched on-chain address.
type LinkedAddress struct {
	ID         string
	UserID     string
	Chain      Chain
	Address    string
	Balance    decimal.Decimal
	BalanceUSD decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
