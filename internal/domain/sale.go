package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleEntry represents a single day's revenue, optionally attributed to a
// partner. At most one entry exists per calendar date system-wide.
type SaleEntry struct {
	ID           string
	SaleDate     time.Time // date-only, normalized to UTC midnight
	PartnerID    *string
	OnlineAmount decimal.Decimal
	CashAmount   decimal.Decimal
	Amount       decimal.Decimal // always OnlineAmount + CashAmount
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks sale amount consistency.
func (s *SaleEntry) Validate() error {
	if s.OnlineAmount.IsNegative() || s.CashAmount.IsNegative() {
		return ErrInvalidAmount
	}

	if !s.Amount.Equal(s.OnlineAmount.Add(s.CashAmount)) {
		return ErrAmountMismatch
	}

	return nil
}

// Attributed reports whether the sale counts toward a partner's balance.
func (s *SaleEntry) Attributed() bool {
	return s.PartnerID != nil && *s.PartnerID != ""
}

// NormalizeDate truncates a timestamp to its UTC calendar date.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
