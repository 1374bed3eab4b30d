package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

// MarketUseCase is the market data gateway: prices, charts and address
// activity behind a short TTL cache. Concurrent misses for the same key share
// one upstream call.
type MarketUseCase struct {
	prices    PriceSource
	explorers map[domain.Chain]AddressExplorer
	cache     Cache
	ttl       time.Duration
	group     singleflight.Group
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewMarketUseCase creates a new MarketUseCase. cache may be nil.
func NewMarketUseCase(
	prices PriceSource,
	explorers []AddressExplorer,
	cache Cache,
	ttl time.Duration,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *MarketUseCase {
	if ttl <= 0 {
		ttl = DefaultMarketCacheTTL
	}

	byChain := make(map[domain.Chain]AddressExplorer, len(explorers))
	for _, e := range explorers {
		byChain[e.Chain()] = e
	}

	return &MarketUseCase{
		prices:    prices,
		explorers: byChain,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With().Str("component", "market").Logger(),
		metrics:   m,
	}
}

// SpotPrices returns USD quotes keyed by upper-case symbol.
func (uc *MarketUseCase) SpotPrices(ctx context.Context, symbols []string) (map[string]domain.SpotPrice, error) {
	normalized, err := normalizeSymbols(symbols)
	if err != nil {
		return nil, err
	}

	key := "market:prices:" + strings.Join(normalized, ",")
	return cached(ctx, uc, key, func(ctx context.Context) (map[string]domain.SpotPrice, error) {
		return uc.prices.SpotPrices(ctx, normalized)
	})
}

// MarketChart returns the USD price series of symbol over the last days.
func (uc *MarketUseCase) MarketChart(ctx context.Context, symbol string, days int) ([]domain.ChartPoint, error) {
	if err := domain.ValidateChartDays(days); err != nil {
		return nil, err
	}
	normalized, err := normalizeSymbols([]string{symbol})
	if err != nil {
		return nil, err
	}

	key := "market:chart:" + normalized[0] + ":" + strconv.Itoa(days)
	return cached(ctx, uc, key, func(ctx context.Context) ([]domain.ChartPoint, error) {
		return uc.prices.MarketChart(ctx, normalized[0], days)
	})
}

// AddressActivity returns the balance and recent transactions of an address.
func (uc *MarketUseCase) AddressActivity(ctx context.Context, chain, address string) (*domain.AddressActivity, error) {
	explorer, err := uc.explorer(chain)
	if err != nil {
		return nil, err
	}

	address = strings.TrimSpace(address)
	if err := explorer.ValidateAddress(address); err != nil {
		return nil, err
	}

	key := "market:address:" + string(explorer.Chain()) + ":" + address
	return cached(ctx, uc, key, func(ctx context.Context) (*domain.AddressActivity, error) {
		return explorer.Activity(ctx, address)
	})
}

// ValidateAddress checks address against the rules of chain.
func (uc *MarketUseCase) ValidateAddress(chain, address string) (domain.Chain, error) {
	explorer, err := uc.explorer(chain)
	if err != nil {
		return "", err
	}
	if err := explorer.ValidateAddress(strings.TrimSpace(address)); err != nil {
		return "", err
	}
	return explorer.Chain(), nil
}

func (uc *MarketUseCase) explorer(chain string) (AddressExplorer, error) {
	c, err := domain.ParseChain(chain)
	if err != nil {
		return nil, err
	}

	explorer, ok := uc.explorers[c]
	if !ok {
		return nil, fmt.Errorf("%w: no explorer configured for %s", domain.ErrUnsupportedChain, c)
	}
	return explorer, nil
}

func normalizeSymbols(symbols []string) ([]string, error) {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))

	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		if err := domain.ValidateCoin(s); err != nil {
			return nil, err
		}
		seen[s] = true
		out = append(out, s)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one symbol is required", domain.ErrInvalidInput)
	}
	if len(out) > domain.MaxSymbolsQuery {
		return nil, fmt.Errorf("%w: at most %d symbols per request", domain.ErrInvalidInput, domain.MaxSymbolsQuery)
	}

	sort.Strings(out)
	return out, nil
}

// cached serves key from the cache, or fetches it once for all concurrent
// callers and stores the result for the TTL. Fetch errors are never cached.
func cached[T any](ctx context.Context, uc *MarketUseCase, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if value, ok := uc.lookup(ctx, key); ok {
		var out T
		if err := json.Unmarshal(value, &out); err == nil {
			uc.countCache("hit")
			return out, nil
		}
	}
	uc.countCache("miss")

	ch := uc.group.DoChan(key, func() (any, error) {
		// Shared by every waiter, so it must outlive the first caller.
		fetchCtx := context.WithoutCancel(ctx)

		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		if uc.cache != nil {
			if data, err := json.Marshal(value); err == nil {
				if err := uc.cache.Set(fetchCtx, key, data, uc.ttl); err != nil {
					uc.logger.Warn().Err(err).Str("key", key).Msg("market cache write failed")
				}
			}
		}

		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (uc *MarketUseCase) lookup(ctx context.Context, key string) ([]byte, bool) {
	if uc.cache == nil {
		return nil, false
	}

	value, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("key", key).Msg("market cache read failed")
		}
		return nil, false
	}
	return value, true
}

func (uc *MarketUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.MarketCache.WithLabelValues(result).Inc()
	}
}
