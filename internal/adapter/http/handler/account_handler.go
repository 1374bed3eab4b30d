package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	GetOrCreateAccount(ctx context.Context, id, email string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) (*usecase.ApprovalResult, error)
	SetTestFlag(ctx context.Context, id string, flag bool) (*domain.Account, error)
	ResetAccount(ctx context.Context, input usecase.ResetAccountInput) (*usecase.ResetAccountResult, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Get retrieves an account by ID, creating a zeroed record on first access.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetOrCreateAccount(r.Context(), id, "")
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageQuery(r)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// SetBalance overwrites the balance and records the difference as an adjustment.
func (h *AccountHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.SetBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	balance, err := req.ParseBalance()
	if err != nil {
		writeDomainError(w, "invalid balance", err)
		return
	}

	result, err := h.accountUC.SetBalance(r.Context(), chi.URLParam(r, "id"), balance)
	if err != nil {
		writeDomainError(w, "failed to set balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromUseCase(result))
}

// SetTestFlag marks or unmarks a test account.
func (h *AccountHandler) SetTestFlag(w http.ResponseWriter, r *http.Request) {
	var req dto.SetTestFlagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.accountUC.SetTestFlag(r.Context(), chi.URLParam(r, "id"), req.TestFlag)
	if err != nil {
		writeDomainError(w, "failed to set test flag", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Reset zeroes one account, optionally deleting its events.
func (h *AccountHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.accountUC.ResetAccount(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to reset account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ResetAccountResponse{
		Account:       dto.AccountFromDomain(result.Account),
		EventsDeleted: result.EventsDeleted,
	})
}
