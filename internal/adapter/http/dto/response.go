package dto

import (
	"time"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID           string            `json:"id"`
	Email        string            `json:"email,omitempty"`
	Balance      string            `json:"balance"`
	TotalDeposit string            `json:"totalDeposit"`
	TotalProfit  string            `json:"totalProfit"`
	Holdings     map[string]string `json:"holdings"`
	TestFlag     bool              `json:"testFlag"`
	Version      int64             `json:"version"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// AccountFromDomain converts a domain account to response.
func AccountFromDomain(a *domain.Account) AccountResponse {
	holdings := make(map[string]string, len(a.Holdings))
	for coin, qty := range a.Holdings {
		holdings[coin] = qty.String()
	}

	return AccountResponse{
		ID:           a.ID,
		Email:        a.Email,
		Balance:      a.Balance.String(),
		TotalDeposit: a.TotalDeposit.String(),
		TotalProfit:  a.TotalProfit.String(),
		Holdings:     holdings,
		TestFlag:     a.TestFlag,
		Version:      a.Version,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AccountsFromDomain converts a slice of domain accounts.
func AccountsFromDomain(accounts []*domain.Account) []AccountResponse {
	result := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int64             `json:"total"`
}

// LedgerEventResponse represents a ledger event in API responses.
type LedgerEventResponse struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"accountId"`
	UserEmail     string    `json:"userEmail,omitempty"`
	Coin          string    `json:"coin,omitempty"`
	AmountCoin    string    `json:"amountCoin"`
	AmountUSD     string    `json:"amountUsd"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	SourceEventID string    `json:"sourceEventId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LedgerEventFromDomain converts a domain ledger event to response.
func LedgerEventFromDomain(e *domain.LedgerEvent) LedgerEventResponse {
	return LedgerEventResponse{
		ID:            e.ID,
		AccountID:     e.AccountID,
		UserEmail:     e.UserEmail,
		Coin:          e.Coin,
		AmountCoin:    e.AmountCoin.String(),
		AmountUSD:     e.AmountUSD.String(),
		Kind:          string(e.Kind),
		Status:        string(e.Status),
		SourceEventID: e.SourceEventID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// LedgerEventsFromDomain converts a slice of domain ledger events.
func LedgerEventsFromDomain(events []*domain.LedgerEvent) []LedgerEventResponse {
	result := make([]LedgerEventResponse, len(events))
	for i, e := range events {
		result[i] = LedgerEventFromDomain(e)
	}
	return result
}

// ListLedgerEventsResponse represents a page of ledger events.
type ListLedgerEventsResponse struct {
	Events []LedgerEventResponse `json:"events"`
	Total  int64                 `json:"total"`
}

// ApprovalResponse is the event and the account it was applied to.
type ApprovalResponse struct {
	Event   *LedgerEventResponse `json:"event,omitempty"`
	Account *AccountResponse     `json:"account,omitempty"`
}

// ApprovalFromUseCase converts an approval result to response. A balance edit
// with no difference has no event.
func ApprovalFromUseCase(r *usecase.ApprovalResult) ApprovalResponse {
	var resp ApprovalResponse
	if r.Event != nil {
		event := LedgerEventFromDomain(r.Event)
		resp.Event = &event
	}
	if r.Account != nil {
		account := AccountFromDomain(r.Account)
		resp.Account = &account
	}
	return resp
}

// ResetAccountResponse represents the outcome of a per-user reset.
type ResetAccountResponse struct {
	Account       AccountResponse `json:"account"`
	EventsDeleted int64           `json:"eventsDeleted"`
}

// BatchJobResponse represents a batch job. Affected is the number of targets
// the job changed.
type BatchJobResponse struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Amount      string     `json:"amount,omitempty"`
	Status      string     `json:"status"`
	Affected    int        `json:"affected"`
	Processed   int        `json:"processed"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	LastError   string     `json:"lastError,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// BatchJobFromDomain converts a domain batch job to response.
func BatchJobFromDomain(j *domain.BatchJob) BatchJobResponse {
	resp := BatchJobResponse{
		ID:          j.ID,
		Kind:        string(j.Kind),
		Status:      string(j.Status),
		Affected:    j.Succeeded,
		Processed:   j.Processed,
		Succeeded:   j.Succeeded,
		Failed:      j.Failed,
		Skipped:     j.Skipped,
		LastError:   j.LastError,
		CreatedBy:   j.CreatedBy,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		CompletedAt: j.CompletedAt,
	}
	if j.Kind.NeedsAmount() {
		resp.Amount = j.Amount.String()
	}
	return resp
}

// BatchJobsFromDomain converts a slice of domain batch jobs.
func BatchJobsFromDomain(jobs []*domain.BatchJob) []BatchJobResponse {
	result := make([]BatchJobResponse, len(jobs))
	for i, j := range jobs {
		result[i] = BatchJobFromDomain(j)
	}
	return result
}

// BatchItemResponse represents the outcome for one job target.
type BatchItemResponse struct {
	TargetID  string    `json:"targetId"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BatchItemsFromDomain converts a slice of domain batch items.
func BatchItemsFromDomain(items []*domain.BatchItem) []BatchItemResponse {
	result := make([]BatchItemResponse, len(items))
	for i, it := range items {
		result[i] = BatchItemResponse{
			TargetID:  it.TargetID,
			Outcome:   string(it.Outcome),
			Error:     it.Error,
			CreatedAt: it.CreatedAt,
		}
	}
	return result
}

// PurgeResponse reports how many rows an irreversible purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// ReconciliationResponse compares the recorded balance with the event sum.
type ReconciliationResponse struct {
	AccountID         string    `json:"accountId"`
	RecordedBalance   string    `json:"recordedBalance"`
	CalculatedBalance string    `json:"calculatedBalance"`
	Difference        string    `json:"difference"`
	EventsCounted     int       `json:"eventsCounted"`
	IsReconciled      bool      `json:"isReconciled"`
	CheckedAt         time.Time `json:"checkedAt"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) ReconciliationResponse {
	return ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance.String(),
		CalculatedBalance: r.CalculatedBalance.String(),
		Difference:        r.Difference.String(),
		EventsCounted:     r.EventsCounted,
		IsReconciled:      r.IsReconciled,
		CheckedAt:         r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes drift across all accounts.
type ReconciliationReportResponse struct {
	TotalAccounts      int                      `json:"totalAccounts"`
	ReconciledAccounts int                      `json:"reconciledAccounts"`
	TotalDrift         string                   `json:"totalDrift"`
	Discrepancies      []ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                `json:"checkedAt"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) ReconciliationReportResponse {
	resp := ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		TotalDrift:         r.TotalDrift.String(),
		Discrepancies:      make([]ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return resp
}

// LinkedAddressResponse represents a linked blockchain address.
type LinkedAddressResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Blockchain string    `json:"blockchain"`
	Address    string    `json:"address"`
	Balance    string    `json:"balance"`
	BalanceUSD string    `json:"balanceUsd"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LinkedAddressFromDomain converts a domain linked address to response.
func LinkedAddressFromDomain(a *domain.LinkedAddress) LinkedAddressResponse {
	return LinkedAddressResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		Blockchain: string(a.Chain),
		Address:    a.Address,
		Balance:    a.Balance.String(),
		BalanceUSD: a.BalanceUSD.String(),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// LinkedAddressesFromDomain converts a slice of domain linked addresses.
func LinkedAddressesFromDomain(addresses []*domain.LinkedAddress) []LinkedAddressResponse {
	result := make([]LinkedAddressResponse, len(addresses))
	for i, a := range addresses {
		result[i] = LinkedAddressFromDomain(a)
	}
	return result
}

// MessageResponse represents a support chat message.
type MessageResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserEmail string    `json:"userEmail,omitempty"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageFromDomain converts a domain support message to response.
func MessageFromDomain(m *domain.SupportMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		UserEmail: m.UserEmail,
		Sender:    string(m.Sender),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

// MessagesFromDomain converts a slice of domain support messages.
func MessagesFromDomain(messages []*domain.SupportMessage) []MessageResponse {
	result := make([]MessageResponse, len(messages))
	for i, m := range messages {
		result[i] = MessageFromDomain(m)
	}
	return result
}

// PriceResponse is one spot quote.
type PriceResponse struct {
	Symbol    string  `json:"symbol"`
	USD       string  `json:"usd"`
	Change24h float64 `json:"change24h"`
}

// PricesFromDomain converts spot quotes keyed by symbol.
func PricesFromDomain(prices map[string]domain.SpotPrice) map[string]PriceResponse {
	result := make(map[string]PriceResponse, len(prices))
	for symbol, p := range prices {
		result[symbol] = PriceResponse{Symbol: p.Symbol, USD: p.USD.String(), Change24h: p.Change24h}
	}
	return result
}

// ChartPointResponse is one sample of a price series.
type ChartPointResponse struct {
	Time  time.Time `json:"time"`
	Price string    `json:"price"`
}

// ChartResponse is a price series for a coin.
type ChartResponse struct {
	Symbol string               `json:"symbol"`
	Days   int                  `json:"days"`
	Points []ChartPointResponse `json:"points"`
}

// ChartFromDomain converts a price series to response.
func ChartFromDomain(symbol string, days int, points []domain.ChartPoint) ChartResponse {
	result := ChartResponse{Symbol: symbol, Days: days, Points: make([]ChartPointResponse, len(points))}
	for i, p := range points {
		result.Points[i] = ChartPointResponse{Time: p.Time, Price: p.Price.String()}
	}
	return result
}

// TransactionResponse is a recent on-chain transfer.
type TransactionResponse struct {
	Hash      string    `json:"hash"`
	Amount    string    `json:"amount"`
	Direction string    `json:"direction"`
	Time      time.Time `json:"time"`
}

// ActivityResponse is the balance and recent history of an address.
type ActivityResponse struct {
	Blockchain   string                `json:"blockchain"`
	Address      string                `json:"address"`
	Balance      string                `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ActivityFromDomain converts address activity to response.
func ActivityFromDomain(a *domain.AddressActivity) ActivityResponse {
	result := ActivityResponse{
		Blockchain:   string(a.Chain),
		Address:      a.Address,
		Balance:      a.Balance.String(),
		Transactions: make([]TransactionResponse, len(a.Transactions)),
	}
	for i, tx := range a.Transactions {
		result.Transactions[i] = TransactionResponse{
			Hash:      tx.Hash,
			Amount:    tx.Amount.String(),
			Direction: string(tx.Direction),
			Time:      tx.Time,
		}
	}
	return result
}

// AuditLogResponse represents an audit row.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType"`
	ResourceID   string         `json:"resourceId"`
	RequestID    string         `json:"requestId,omitempty"`
	BeforeState  map[string]any `json:"beforeState,omitempty"`
	AfterState   map[string]any `json:"afterState,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// AuditLogsFromDomain converts a slice of audit rows.
func AuditLogsFromDomain(logs []*domain.AuditLog) []AuditLogResponse {
	result := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
