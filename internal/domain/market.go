package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpotPrice is the current USD quote of a coin.
type SpotPrice struct {
	Symbol    string          `json:"symbol"`
	USD       decimal.Decimal `json:"usd"`
	Change24h float64         `json:"change_24h"`
}

// ChartPoint is one sample of a price series.
type ChartPoint struct {
	Time  time.Time       `json:"time"`
	Price decimal.Decimal `json:"price"`
}

// TxDirection tells whether value entered or left the address.
type TxDirection string

const (
	TxDirectionIn      TxDirection = "in"
	TxDirectionOut     TxDirection = "out"
	TxDirectionUnknown TxDirection = "unknown"
)

// ChainTransaction is a recent on-chain transfer touching an address.
type ChainTransaction struct {
	Hash      string          `json:"hash"`
	Amount    decimal.Decimal `json:"amount"`
	Direction TxDirection     `json:"direction"`
	Time      time.Time       `json:"time"`
}

// AddressActivity is the balance and recent history of an address.
type AddressActivity struct {
	Chain        Chain              `json:"chain"`
	Address      string             `json:"address"`
	Balance      decimal.Decimal    `json:"balance"`
	Transactions []ChainTransaction `json:"transactions"`
}
