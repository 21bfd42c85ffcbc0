package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the approval lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
)

// TransactionDomain selects which balance projection a transaction feeds.
type TransactionDomain string

const (
	// DomainBusiness transactions move each partner's aggregate balance.
	DomainBusiness TransactionDomain = "business"
	// DomainPersonal transactions move only the pairwise net balance.
	DomainPersonal TransactionDomain = "personal"
)

// Transaction represents a transfer between two distinct partners. Only rows
// with StatusApproved are reflected in balances.
type Transaction struct {
	ID              string
	Domain          TransactionDomain
	FromPartnerID   string
	ToPartnerID     string
	Amount          decimal.Decimal
	Status          TransactionStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	TransactionDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate validates a transaction request.
func (t *Transaction) Validate() error {
	if t.FromPartnerID == t.ToPartnerID {
		return ErrSamePartner
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.Domain != DomainBusiness && t.Domain != DomainPersonal {
		return ErrInvalidDomain
	}

	return nil
}

// IsApproved reports whether the transaction currently affects balances.
func (t *Transaction) IsApproved() bool {
	return t.Status == StatusApproved
}

// Approve transitions pending → approved. Only the receiving partner may
// approve; any other starting state is rejected so a repeated approve can
// never double-apply the amount.
func (t *Transaction) Approve(actorID string, now time.Time) error {
	if t.Status != StatusPending {
		return ErrInvalidState
	}

	if actorID != t.ToPartnerID {
		return ErrNotReceiver
	}

	t.Status = StatusApproved
	t.ApprovedBy = &actorID
	t.ApprovedAt = &now
	t.RejectionReason = nil
	t.UpdatedAt = now

	return nil
}

// Reject transitions pending → rejected with an optional reason.
func (t *Transaction) Reject(actorID string, reason *string, now time.Time) error {
	if t.Status != StatusPending {
		return ErrInvalidState
	}

	if actorID != t.ToPartnerID {
		return ErrNotReceiver
	}

	t.Status = StatusRejected
	t.ApprovedBy = &actorID
	t.ApprovedAt = nil
	t.RejectionReason = reason
	t.UpdatedAt = now

	return nil
}

// ResetToPending reopens an approved transaction for correction, clearing the
// approval metadata. Resubmitting a rejected transaction is not supported.
func (t *Transaction) ResetToPending(now time.Time) error {
	if t.Status == StatusRejected {
		return ErrInvalidState
	}

	t.Status = StatusPending
	t.ApprovedBy = nil
	t.ApprovedAt = nil
	t.RejectionReason = nil
	t.UpdatedAt = now

	return nil
}
