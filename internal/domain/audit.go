package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who changed what, with before/after snapshots.
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // What action (ledger_event.approve, account.reset, etc.)
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string // success, failure
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountSetBalance AuditAction = "account.set_balance"
	AuditActionAccountSetFlag    AuditAction = "account.set_test_flag"
	AuditActionAccountReset      AuditAction = "account.reset"
	AuditActionAdjustProfit      AuditAction = "account.adjust_profit"
	AuditActionChargeFee         AuditAction = "account.charge_fee"

	AuditActionEventApprove  AuditAction = "ledger_event.approve"
	AuditActionEventReject   AuditAction = "ledger_event.reject"
	AuditActionEventWithdraw AuditAction = "ledger_event.withdraw"
	AuditActionLedgerPurge   AuditAction = "ledger.purge"

	AuditActionBatchStart  AuditAction = "batch_job.start"
	AuditActionBatchResume AuditAction = "batch_job.resume"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}
