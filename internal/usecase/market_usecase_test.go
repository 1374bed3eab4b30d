package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
	"github.com/iho/coinledger/internal/usecase/mocks"
)

func newMarket(t *testing.T, explorers ...usecase.AddressExplorer) (*usecase.MarketUseCase, *mocks.MockPriceSource, *mocks.MockCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	prices := mocks.NewMockPriceSource(ctrl)
	cache := mocks.NewMockCache()

	return usecase.NewMarketUseCase(prices, explorers, cache, time.Minute, zerolog.Nop(), nil), prices, cache
}

func TestMarketUseCase_SpotPricesCached(t *testing.T) {
	uc, prices, cache := newMarket(t)

	prices.EXPECT().
		SpotPrices(gomock.Any(), []string{"BTC", "ETH"}).
		Return(map[string]domain.SpotPrice{
			"BTC": {Symbol: "BTC", USD: dec("60000")},
			"ETH": {Symbol: "ETH", USD: dec("3000")},
		}, nil).
		Times(1)

	got, err := uc.SpotPrices(context.Background(), []string{"eth", " btc", "ETH"})
	require.NoError(t, err)
	assert.True(t, got["BTC"].USD.Equal(dec("60000")))

	again, err := uc.SpotPrices(context.Background(), []string{"BTC", "ETH"})
	require.NoError(t, err)
	assert.True(t, again["ETH"].USD.Equal(dec("3000")))

	_, err = cache.Get(context.Background(), "market:prices:BTC,ETH")
	assert.NoError(t, err, "prices should be cached under the normalized key")
}

func TestMarketUseCase_ErrorsAreNotCached(t *testing.T) {
	uc, prices, cache := newMarket(t)

	upstream := domain.NewUpstreamError("coingecko", errors.New("503"))
	gomock.InOrder(
		prices.EXPECT().MarketChart(gomock.Any(), "BTC", 7).Return(nil, upstream),
		prices.EXPECT().MarketChart(gomock.Any(), "BTC", 7).Return([]domain.ChartPoint{
			{Time: time.Unix(1700000000, 0).UTC(), Price: dec("35000")},
		}, nil),
	)

	_, err := uc.MarketChart(context.Background(), "btc", 7)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	_, err = cache.Get(context.Background(), "market:chart:BTC:7")
	require.ErrorIs(t, err, usecase.ErrCacheMiss)

	points, err := uc.MarketChart(context.Background(), "BTC", 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Price.Equal(dec("35000")))
}

func TestMarketUseCase_ConcurrentMissesShareOneFetch(t *testing.T) {
	uc, prices, _ := newMarket(t)

	release := make(chan struct{})
	prices.EXPECT().
		SpotPrices(gomock.Any(), []string{"SOL"}).
		DoAndReturn(func(ctx context.Context, symbols []string) (map[string]domain.SpotPrice, error) {
			<-release
			return map[string]domain.SpotPrice{"SOL": {Symbol: "SOL", USD: dec("150")}}, nil
		}).
		Times(1)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.SpotPrices(context.Background(), []string{"SOL"})
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestMarketUseCase_InputValidation(t *testing.T) {
	uc, _, _ := newMarket(t)
	ctx := context.Background()

	_, err := uc.SpotPrices(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SpotPrices(ctx, []string{"BTC", "not a coin!"})
	assert.ErrorIs(t, err, domain.ErrInvalidCoin)

	_, err = uc.MarketChart(ctx, "BTC", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidChartDays)

	_, err = uc.MarketChart(ctx, "BTC", 366)
	assert.ErrorIs(t, err, domain.ErrInvalidChartDays)

	_, err = uc.AddressActivity(ctx, "dogecoin", "D8vFz")
	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)

	// Known chain without an explorer configured.
	_, err = uc.AddressActivity(ctx, "sol", "11111111111111111111111111111111")
	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)
}

func TestMarketUseCase_AddressActivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	explorer := mocks.NewMockAddressExplorer(ctrl)
	explorer.EXPECT().Chain().Return(domain.ChainEthereum).AnyTimes()

	const addr = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	explorer.EXPECT().ValidateAddress(addr).Return(nil).Times(2)
	explorer.EXPECT().ValidateAddress("0xnope").Return(domain.ErrInvalidAddress)
	explorer.EXPECT().Activity(gomock.Any(), addr).Return(&domain.AddressActivity{
		Chain:   domain.ChainEthereum,
		Address: addr,
		Balance: dec("1.5"),
	}, nil).Times(1)

	uc, _, _ := newMarket(t, explorer)

	activity, err := uc.AddressActivity(context.Background(), "ETH", " "+addr+" ")
	require.NoError(t, err)
	assert.True(t, activity.Balance.Equal(dec("1.5")))

	cachedActivity, err := uc.AddressActivity(context.Background(), "ethereum", addr)
	require.NoError(t, err)
	assert.Equal(t, addr, cachedActivity.Address)

	_, err = uc.AddressActivity(context.Background(), "ethereum", "0xnope")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestMarketUseCase_CallerCancellation(t *testing.T) {
	uc, prices, _ := newMarket(t)

	release := make(chan struct{})
	defer close(release)
	prices.EXPECT().
		SpotPrices(gomock.Any(), []string{"BTC"}).
		DoAndReturn(func(ctx context.Context, symbols []string) (map[string]domain.SpotPrice, error) {
			<-release
			return map[string]domain.SpotPrice{}, nil
		}).
		AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := uc.SpotPrices(ctx, []string{"BTC"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
