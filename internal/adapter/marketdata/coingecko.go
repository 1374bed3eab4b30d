package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
)

const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// coinIDs maps ticker symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"LTC":  "litecoin",
	"USDT": "tether",
	"USDC": "usd-coin",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
}

// CoinGecko is a PriceSource backed by the CoinGecko public API.
type CoinGecko struct {
	baseURL string
	apiKey  string
	up      *upstream
}

func NewCoinGecko(baseURL, apiKey string, opts Options) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		up:      newUpstream("coingecko", opts),
	}
}

func coinID(symbol string) (string, error) {
	id, ok := coinIDs[strings.ToUpper(symbol)]
	if !ok {
		return "", fmt.Errorf("%w: %s is not quoted", domain.ErrInvalidCoin, symbol)
	}
	return id, nil
}

func (c *CoinGecko) header() http.Header {
	h := http.Header{}
	if c.apiKey != "" {
		h.Set("x-cg-demo-api-key", c.apiKey)
	}
	return h
}

// SpotPrices returns the USD quote for each symbol. Symbols the upstream
// does not answer for are left out of the result.
func (c *CoinGecko) SpotPrices(ctx context.Context, symbols []string) (map[string]domain.SpotPrice, error) {
	ids := make([]string, 0, len(symbols))
	bySymbol := make(map[string]string, len(symbols))
	for _, s := range symbols {
		id, err := coinID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		bySymbol[id] = strings.ToUpper(s)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")

	var resp map[string]map[string]json.Number
	if err := c.up.getJSON(ctx, c.baseURL+"/simple/price?"+q.Encode(), c.header(), &resp); err != nil {
		return nil, err
	}

	prices := make(map[string]domain.SpotPrice, len(resp))
	for id, quote := range resp {
		symbol, ok := bySymbol[id]
		if !ok {
			continue
		}
		raw, ok := quote["usd"]
		if !ok {
			continue
		}
		usd, err := decimal.NewFromString(raw.String())
		if err != nil {
			return nil, domain.NewUpstreamError(c.up.name, fmt.Errorf("price for %s: %w", symbol, err))
		}

		var change float64
		if v, ok := quote["usd_24h_change"]; ok {
			change, _ = v.Float64()
		}

		prices[symbol] = domain.SpotPrice{Symbol: symbol, USD: usd, Change24h: change}
	}

	return prices, nil
}

type marketChartResponse struct {
	Prices [][]json.Number `json:"prices"`
}

// MarketChart returns USD price points over the last days.
func (c *CoinGecko) MarketChart(ctx context.Context, symbol string, days int) ([]domain.ChartPoint, error) {
	id, err := coinID(symbol)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))

	var resp marketChartResponse
	endpoint := c.baseURL + "/coins/" + url.PathEscape(id) + "/market_chart?" + q.Encode()
	if err := c.up.getJSON(ctx, endpoint, c.header(), &resp); err != nil {
		return nil, err
	}

	points := make([]domain.ChartPoint, 0, len(resp.Prices))
	for _, pair := range resp.Prices {
		if len(pair) != 2 {
			continue
		}
		ms, err := pair[0].Int64()
		if err != nil {
			// Some responses carry float timestamps.
			f, ferr := pair[0].Float64()
			if ferr != nil {
				continue
			}
			ms = int64(f)
		}
		price, err := decimal.NewFromString(pair[1].String())
		if err != nil {
			continue
		}
		points = append(points, domain.ChartPoint{Time: time.UnixMilli(ms).UTC(), Price: price})
	}

	return points, nil
}
