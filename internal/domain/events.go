package domain

import "time"

// Event types
const (
	EventTypeSaleCreated           = "sale.created"
	EventTypeSaleUpdated           = "sale.updated"
	EventTypeSaleDeleted           = "sale.deleted"
	EventTypeTransactionCreated    = "transaction.created"
	EventTypeTransactionApproved   = "transaction.approved"
	EventTypeTransactionRejected   = "transaction.rejected"
	EventTypeTransactionReopened   = "transaction.reopened"
	EventTypeTransactionDeleted    = "transaction.deleted"
	EventTypePartnerCreated        = "partner.created"
	EventTypeBalancesReconciled    = "balances.reconciled"
)

// Aggregate types
const (
	AggregateTypeSale        = "sale"
	AggregateTypeTransaction = "transaction"
	AggregateTypePartner     = "partner"
	AggregateTypeLedger      = "ledger"
)

// OutboxEvent represents an event written in the same transaction as the
// mutation it describes, to be published by a downstream relay.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionApprovedEvent payload
type TransactionApprovedEvent struct {
	TransactionID string `json:"transaction_id"`
	Domain        string `json:"domain"`
	FromPartnerID string `json:"from_partner_id"`
	ToPartnerID   string `json:"to_partner_id"`
	Amount        string `json:"amount"`
	ApprovedBy    string `json:"approved_by"`
}

// SaleCreatedEvent payload
type SaleCreatedEvent struct {
	SaleID    string  `json:"sale_id"`
	SaleDate  string  `json:"sale_date"`
	PartnerID *string `json:"partner_id,omitempty"`
	Amount    string  `json:"amount"`
}
