package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CreateEvent(ctx context.Context, input usecase.CreateEventInput) (*domain.LedgerEvent, error)
	GetEvent(ctx context.Context, id string) (*domain.LedgerEvent, error)
	ListEvents(ctx context.Context, filter domain.LedgerEventFilter) ([]*domain.LedgerEvent, error)
	ApproveEvent(ctx context.Context, id string) (*usecase.ApprovalResult, error)
	RejectEvent(ctx context.Context, id string) (*domain.LedgerEvent, error)
	RequestWithdrawal(ctx context.Context, depositID string) (*domain.LedgerEvent, error)
	ApproveWithdrawal(ctx context.Context, depositID string) (*usecase.ApprovalResult, error)
	AdjustProfit(ctx context.Context, input usecase.AdjustProfitInput) (*usecase.ApprovalResult, error)
}

// LedgerHandler handles ledger event requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Create files a new ledger event.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLedgerEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid ledger event", err)
		return
	}

	event, err := h.ledgerUC.CreateEvent(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create ledger event", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LedgerEventFromDomain(event))
}

// Get retrieves a ledger event by ID.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.ledgerUC.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get ledger event", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerEventFromDomain(event))
}

// List lists ledger events filtered by status, kind and accountId.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("accountId"))
}

// ListByAccount lists the events of one account.
func (h *LedgerHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "id"))
}

func (h *LedgerHandler) list(w http.ResponseWriter, r *http.Request, accountID string) {
	filter, err := eventFilter(r, accountID)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	events, err := h.ledgerUC.ListEvents(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list ledger events", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLedgerEventsResponse{
		Events: dto.LedgerEventsFromDomain(events),
		Total:  int64(len(events)),
	})
}

// Approve applies a pending event to its account.
func (h *LedgerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerUC.ApproveEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to approve ledger event", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromUseCase(result))
}

// Reject rejects a pending event.
func (h *LedgerHandler) Reject(w http.ResponseWriter, r *http.Request) {
	event, err := h.ledgerUC.RejectEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to reject ledger event", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerEventFromDomain(event))
}

// RequestWithdrawal files a withdrawal request against a matured deposit.
func (h *LedgerHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	event, err := h.ledgerUC.RequestWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to request withdrawal", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LedgerEventFromDomain(event))
}

// Withdraw marks a completed deposit as withdrawn and debits the account.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerUC.ApproveWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to withdraw deposit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromUseCase(result))
}

// AdjustProfit credits profit to, or charges a fee on, one account.
func (h *LedgerHandler) AdjustProfit(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustProfitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "invalid adjustment", err)
		return
	}

	result, err := h.ledgerUC.AdjustProfit(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to adjust profit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromUseCase(result))
}

func eventFilter(r *http.Request, accountID string) (domain.LedgerEventFilter, error) {
	q := r.URL.Query()
	limit, offset := pageQuery(r)
	filter := domain.LedgerEventFilter{AccountID: accountID, Limit: limit, Offset: offset}

	if s := q.Get("status"); s != "" {
		status, err := domain.ParseEventStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if k := q.Get("kind"); k != "" {
		kind, err := domain.ParseEventKind(k)
		if err != nil {
			return filter, err
		}
		filter.Kind = kind
	}

	return filter, nil
}
