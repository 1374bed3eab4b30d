package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

type reconciliationServiceStub struct {
	accountFn func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	reportFn  func(ctx context.Context) (*usecase.ReconciliationReport, error)
}

func (s *reconciliationServiceStub) ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
	return s.accountFn(ctx, accountID)
}

func (s *reconciliationServiceStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx)
}

func TestReconciliationHandler_Account(t *testing.T) {
	drift := &usecase.ReconciliationResult{
		AccountID:         "acc-2",
		RecordedBalance:   decimal.NewFromInt(70),
		CalculatedBalance: decimal.NewFromInt(50),
		Difference:        decimal.NewFromInt(20),
		EventsCounted:     1,
	}
	handler := NewReconciliationHandler(&reconciliationServiceStub{
		accountFn: func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
			if accountID == "ghost" {
				return nil, domain.ErrAccountNotFound
			}
			return drift, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Account(rec, setChiURLParam(httptest.NewRequest(http.MethodGet, "/admin/accounts/acc-2/reconcile", nil), "id", "acc-2"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsReconciled)
	assert.Equal(t, "20", resp.Difference)

	rec = httptest.NewRecorder()
	handler.Account(rec, setChiURLParam(httptest.NewRequest(http.MethodGet, "/admin/accounts/ghost/reconcile", nil), "id", "ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReconciliationHandler_Report(t *testing.T) {
	handler := NewReconciliationHandler(&reconciliationServiceStub{
		reportFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{
				TotalAccounts:      3,
				ReconciledAccounts: 2,
				TotalDrift:         decimal.NewFromInt(20),
				Discrepancies:      []*usecase.ReconciliationResult{{AccountID: "acc-2"}},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Report(rec, httptest.NewRequest(http.MethodGet, "/admin/reconciliation", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReconciliationReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalAccounts)
	require.Len(t, resp.Discrepancies, 1)
	assert.Equal(t, "acc-2", resp.Discrepancies[0].AccountID)
}
