package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
)

const defaultChartDays = 7

// MarketService defines the behavior needed by MarketHandler.
type MarketService interface {
	SpotPrices(ctx context.Context, symbols []string) (map[string]domain.SpotPrice, error)
	MarketChart(ctx context.Context, symbol string, days int) ([]domain.ChartPoint, error)
	AddressActivity(ctx context.Context, chain, address string) (*domain.AddressActivity, error)
}

// MarketHandler serves cached market data and chain lookups.
type MarketHandler struct {
	marketUC MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketUC MarketService) *MarketHandler {
	return &MarketHandler{marketUC: marketUC}
}

// Prices returns spot quotes for ?symbols=BTC,ETH.
func (h *MarketHandler) Prices(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	for _, s := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	prices, err := h.marketUC.SpotPrices(r.Context(), symbols)
	if err != nil {
		writeDomainError(w, "failed to get prices", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"prices": dto.PricesFromDomain(prices)})
}

// Chart returns the price series of a coin over ?days.
func (h *MarketHandler) Chart(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	days := parseIntQuery(r, "days", defaultChartDays)

	points, err := h.marketUC.MarketChart(r.Context(), symbol, days)
	if err != nil {
		writeDomainError(w, "failed to get chart", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChartFromDomain(symbol, days, points))
}

// Activity returns the balance and recent transactions of an address.
func (h *MarketHandler) Activity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.marketUC.AddressActivity(r.Context(), chi.URLParam(r, "chain"), chi.URLParam(r, "address"))
	if err != nil {
		writeDomainError(w, "failed to get address activity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ActivityFromDomain(activity))
}
