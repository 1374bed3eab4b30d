package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

type accountServiceStub struct {
	getFn      func(ctx context.Context, id, email string) (*domain.Account, error)
	listFn     func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	balanceFn  func(ctx context.Context, id string, balance decimal.Decimal) (*usecase.ApprovalResult, error)
	testFlagFn func(ctx context.Context, id string, flag bool) (*domain.Account, error)
	resetFn    func(ctx context.Context, input usecase.ResetAccountInput) (*usecase.ResetAccountResult, error)
}

func (s *accountServiceStub) GetOrCreateAccount(ctx context.Context, id, email string) (*domain.Account, error) {
	return s.getFn(ctx, id, email)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) SetBalance(ctx context.Context, id string, balance decimal.Decimal) (*usecase.ApprovalResult, error) {
	return s.balanceFn(ctx, id, balance)
}

func (s *accountServiceStub) SetTestFlag(ctx context.Context, id string, flag bool) (*domain.Account, error) {
	return s.testFlagFn(ctx, id, flag)
}

func (s *accountServiceStub) ResetAccount(ctx context.Context, input usecase.ResetAccountInput) (*usecase.ResetAccountResult, error) {
	return s.resetFn(ctx, input)
}

func TestAccountHandler_Get(t *testing.T) {
	account := &domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(250)}
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id, email string) (*domain.Account, error) {
			if id != "acc-1" {
				t.Fatalf("expected id acc-1, got %s", id)
			}
			return account, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Balance != "250" {
		t.Fatalf("expected balance 250, got %s", resp.Balance)
	}
}

func TestAccountHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"invalid id", domain.ErrInvalidInput, http.StatusBadRequest},
		{"db error", errors.New("db error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				getFn: func(ctx context.Context, id, email string) (*domain.Account, error) { return nil, tt.err },
			})

			req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil), "id", "acc-1")
			rec := httptest.NewRecorder()

			handler.Get(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestAccountHandler_List(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			if input.Limit != 5 || input.Offset != 2 {
				t.Fatalf("expected limit=5 offset=2, got %+v", input)
			}
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=5&offset=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp.Accounts))
	}
}

func TestAccountHandler_SetBalance(t *testing.T) {
	var captured decimal.Decimal
	handler := NewAccountHandler(&accountServiceStub{
		balanceFn: func(ctx context.Context, id string, balance decimal.Decimal) (*usecase.ApprovalResult, error) {
			captured = balance
			return &usecase.ApprovalResult{
				Event:   &domain.LedgerEvent{ID: "ev-1", AccountID: id, Kind: domain.EventKindAdjustment, Status: domain.EventStatusCompleted, AmountUSD: decimal.NewFromInt(-50)},
				Account: &domain.Account{ID: id, Balance: balance},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/admin/accounts/acc-1/balance", bytes.NewBufferString(`{"balance":"950.25"}`))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.SetBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.Equal(decimal.RequireFromString("950.25")) {
		t.Fatalf("expected balance 950.25, got %s", captured)
	}

	var resp dto.ApprovalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Event == nil || resp.Event.Kind != "adjustment" || resp.Account.Balance != "950.25" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_SetBalance_InvalidAmount(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		balanceFn: func(ctx context.Context, id string, balance decimal.Decimal) (*usecase.ApprovalResult, error) {
			t.Fatal("SetBalance should not be called for an invalid amount")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/admin/accounts/acc-1/balance", bytes.NewBufferString(`{"balance":"lots"}`))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.SetBalance(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_SetTestFlag(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		testFlagFn: func(ctx context.Context, id string, flag bool) (*domain.Account, error) {
			return &domain.Account{ID: id, TestFlag: flag}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/admin/accounts/acc-1/test-flag", bytes.NewBufferString(`{"testFlag":true}`))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.SetTestFlag(rec, req)

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.Code != http.StatusOK || !resp.TestFlag {
		t.Fatalf("expected flagged account, got %d %+v", rec.Code, resp)
	}
}

func TestAccountHandler_Reset(t *testing.T) {
	var captured usecase.ResetAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		resetFn: func(ctx context.Context, input usecase.ResetAccountInput) (*usecase.ResetAccountResult, error) {
			captured = input
			if !input.Confirm {
				return nil, domain.ErrConfirmationRequired
			}
			return &usecase.ResetAccountResult{Account: &domain.Account{ID: input.AccountID}, EventsDeleted: 4}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/accounts/acc-1/reset", bytes.NewBufferString(`{"confirm":true,"purgeEvents":true}`))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Reset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || !captured.PurgeEvents {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.ResetAccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.EventsDeleted != 4 {
		t.Fatalf("expected 4 deleted events, got %d", resp.EventsDeleted)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/accounts/acc-1/reset", bytes.NewBufferString(`{}`))
	req = setChiURLParam(req, "id", "acc-1")
	rec = httptest.NewRecorder()

	handler.Reset(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirmation, got %d", rec.Code)
	}
}
