package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
)

const DefaultBlockCypherURL = "https://api.blockcypher.com"

// Bitcoin reads mainnet address activity from BlockCypher.
type Bitcoin struct {
	baseURL string
	token   string
	params  *chaincfg.Params
	limit   int
	up      *upstream
}

func NewBitcoin(baseURL, token string, opts Options) *Bitcoin {
	if baseURL == "" {
		baseURL = DefaultBlockCypherURL
	}
	return &Bitcoin{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		params:  &chaincfg.MainNetParams,
		limit:   defaultTxLimit,
		up:      newUpstream("blockcypher", opts),
	}
}

func (b *Bitcoin) Chain() domain.Chain { return domain.ChainBitcoin }

// ValidateAddress accepts legacy, P2SH and bech32 mainnet addresses.
func (b *Bitcoin) ValidateAddress(address string) error {
	addr, err := btcutil.DecodeAddress(address, b.params)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAddress, err)
	}
	if !addr.IsForNet(b.params) {
		return fmt.Errorf("%w: not a mainnet address", domain.ErrInvalidAddress)
	}
	return nil
}

type blockCypherAddress struct {
	Address string           `json:"address"`
	Balance int64            `json:"balance"`
	TxRefs  []blockCypherRef `json:"txrefs"`
}

type blockCypherRef struct {
	TxHash    string    `json:"tx_hash"`
	TxOutputN int       `json:"tx_output_n"`
	Value     int64     `json:"value"`
	Confirmed time.Time `json:"confirmed"`
}

func (b *Bitcoin) Activity(ctx context.Context, address string) (*domain.AddressActivity, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(b.limit))
	if b.token != "" {
		q.Set("token", b.token)
	}

	var resp blockCypherAddress
	endpoint := b.baseURL + "/v1/btc/main/addrs/" + url.PathEscape(address) + "?" + q.Encode()
	if err := b.up.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	activity := &domain.AddressActivity{
		Chain:        domain.ChainBitcoin,
		Address:      address,
		Balance:      satoshis(resp.Balance),
		Transactions: make([]domain.ChainTransaction, 0, len(resp.TxRefs)),
	}

	for _, ref := range resp.TxRefs {
		// An input ref has no output index.
		direction := domain.TxDirectionIn
		if ref.TxOutputN == -1 {
			direction = domain.TxDirectionOut
		}
		activity.Transactions = append(activity.Transactions, domain.ChainTransaction{
			Hash:      ref.TxHash,
			Amount:    satoshis(ref.Value),
			Direction: direction,
			Time:      ref.Confirmed.UTC(),
		})
	}

	return activity, nil
}

func satoshis(v int64) decimal.Decimal {
	return decimal.New(int64(btcutil.Amount(v)), -8)
}
