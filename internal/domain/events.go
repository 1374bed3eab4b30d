package domain

import "time"

// Event types
const (
	EventTypeAccountCreated     = "account.created"
	EventTypeAccountUpdated     = "account.updated"
	EventTypeAccountReset       = "account.reset"
	EventTypeLedgerEventCreated = "ledger_event.created"
	EventTypeLedgerEventUpdated = "ledger_event.status_changed"
	EventTypeLedgerPurged       = "ledger.purged"
	EventTypeBatchJobFinished   = "batch_job.finished"
	EventTypeMessageCreated     = "support_message.created"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeLedgerEvent = "ledger_event"
	AggregateTypeBatchJob    = "batch_job"
	AggregateTypeMessage     = "support_message"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	AccountID     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountPayload renders an account for outbox payloads.
func AccountPayload(a *Account) map[string]any {
	holdings := make(map[string]string, len(a.Holdings))
	for coin, qty := range a.Holdings {
		holdings[coin] = qty.String()
	}

	return map[string]any{
		"account_id":    a.ID,
		"balance":       a.Balance.String(),
		"total_deposit": a.TotalDeposit.String(),
		"total_profit":  a.TotalProfit.String(),
		"holdings":      holdings,
		"test_flag":     a.TestFlag,
		"version":       a.Version,
	}
}

// LedgerEventPayload renders a ledger event for outbox payloads.
func LedgerEventPayload(e *LedgerEvent) map[string]any {
	payload := map[string]any{
		"event_id":    e.ID,
		"account_id":  e.AccountID,
		"coin":        e.Coin,
		"amount_coin": e.AmountCoin.String(),
		"amount_usd":  e.AmountUSD.String(),
		"kind":        string(e.Kind),
		"status":      string(e.Status),
		"created_at":  e.CreatedAt.Format(time.RFC3339),
	}
	if e.SourceEventID != "" {
		payload["source_event_id"] = e.SourceEventID
	}
	return payload
}
