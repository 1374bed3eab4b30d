package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/coinledger/internal/domain"
)

const DefaultEtherscanURL = "https://api.etherscan.io/api"

// BalanceReader is the slice of ethclient.Client used for balances.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Ethereum reads balances from a JSON-RPC node when one is configured and
// transaction history from Etherscan.
type Ethereum struct {
	node      BalanceReader
	scanURL   string
	apiKey    string
	limit     int
	nodeUp    *upstream
	etherscan *upstream
}

func NewEthereum(node BalanceReader, etherscanURL, apiKey string, opts Options) *Ethereum {
	if etherscanURL == "" {
		etherscanURL = DefaultEtherscanURL
	}
	return &Ethereum{
		node:      node,
		scanURL:   etherscanURL,
		apiKey:    apiKey,
		limit:     defaultTxLimit,
		nodeUp:    newUpstream("ethereum-rpc", opts),
		etherscan: newUpstream("etherscan", opts),
	}
}

// DialEthereum connects to rpcURL; an empty rpcURL falls back to
// Etherscan for balances.
func DialEthereum(ctx context.Context, rpcURL, etherscanURL, apiKey string, opts Options) (*Ethereum, error) {
	if rpcURL == "" {
		return NewEthereum(nil, etherscanURL, apiKey, opts), nil
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum node: %w", err)
	}
	return NewEthereum(client, etherscanURL, apiKey, opts), nil
}

func (e *Ethereum) Chain() domain.Chain { return domain.ChainEthereum }

func (e *Ethereum) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) || !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("%w: expected 0x-prefixed 20-byte hex", domain.ErrInvalidAddress)
	}
	return nil
}

func (e *Ethereum) Activity(ctx context.Context, address string) (*domain.AddressActivity, error) {
	activity := &domain.AddressActivity{Chain: domain.ChainEthereum, Address: address}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wei, err := e.balance(gctx, address)
		if err != nil {
			return err
		}
		activity.Balance = weiToEther(wei)
		return nil
	})
	g.Go(func() error {
		txs, err := e.transactions(gctx, address)
		if err != nil {
			return err
		}
		activity.Transactions = txs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return activity, nil
}

func (e *Ethereum) balance(ctx context.Context, address string) (*big.Int, error) {
	if e.node != nil {
		var wei *big.Int
		err := e.nodeUp.guard(ctx, func(ctx context.Context) error {
			var err error
			wei, err = e.node.BalanceAt(ctx, common.HexToAddress(address), nil)
			return err
		})
		return wei, err
	}

	var raw string
	if err := e.query(ctx, "balance", address, &raw); err != nil {
		return nil, err
	}
	wei, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, domain.NewUpstreamError(e.etherscan.name, fmt.Errorf("malformed balance %q", raw))
	}
	return wei, nil
}

type etherscanTx struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	TimeStamp string `json:"timeStamp"`
}

func (e *Ethereum) transactions(ctx context.Context, address string) ([]domain.ChainTransaction, error) {
	var raw []etherscanTx
	if err := e.query(ctx, "txlist", address, &raw); err != nil {
		return nil, err
	}

	txs := make([]domain.ChainTransaction, 0, len(raw))
	for _, tx := range raw {
		wei, ok := new(big.Int).SetString(tx.Value, 10)
		if !ok {
			continue
		}
		direction := domain.TxDirectionIn
		if strings.EqualFold(tx.From, address) {
			direction = domain.TxDirectionOut
		}
		var ts time.Time
		if sec, err := strconv.ParseInt(tx.TimeStamp, 10, 64); err == nil {
			ts = time.Unix(sec, 0).UTC()
		}
		txs = append(txs, domain.ChainTransaction{
			Hash:      tx.Hash,
			Amount:    weiToEther(wei),
			Direction: direction,
			Time:      ts,
		})
	}
	return txs, nil
}

type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

var errNoTransactions = errors.New("no transactions found")

// query calls an Etherscan account action and decodes its result field.
func (e *Ethereum) query(ctx context.Context, action, address string, out any) error {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", action)
	q.Set("address", address)
	q.Set("tag", "latest")
	if action == "txlist" {
		q.Set("sort", "desc")
		q.Set("page", "1")
		q.Set("offset", strconv.Itoa(e.limit))
	}
	if e.apiKey != "" {
		q.Set("apikey", e.apiKey)
	}

	var env etherscanEnvelope
	if err := e.etherscan.getJSON(ctx, e.scanURL+"?"+q.Encode(), nil, &env); err != nil {
		return err
	}

	if env.Status != "1" {
		if strings.EqualFold(env.Message, errNoTransactions.Error()) {
			return nil
		}
		var reason string
		_ = json.Unmarshal(env.Result, &reason)
		return domain.NewUpstreamError(e.etherscan.name, fmt.Errorf("%s: %s", env.Message, reason))
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return domain.NewUpstreamError(e.etherscan.name, fmt.Errorf("decode %s result: %w", action, err))
	}
	return nil
}

func weiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -18)
}
