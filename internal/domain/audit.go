package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who performed a balance-affecting action and its outcome.
type AuditLog struct {
	ID           string
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionSaleCreate  AuditAction = "sale.create"
	AuditActionSaleUpdate  AuditAction = "sale.update"
	AuditActionSaleDelete  AuditAction = "sale.delete"

	AuditActionTransactionCreate  AuditAction = "transaction.create"
	AuditActionTransactionApprove AuditAction = "transaction.approve"
	AuditActionTransactionReject  AuditAction = "transaction.reject"
	AuditActionTransactionUpdate  AuditAction = "transaction.update"
	AuditActionTransactionDelete  AuditAction = "transaction.delete"

	AuditActionReconcile AuditAction = "ledger.reconcile"
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
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
