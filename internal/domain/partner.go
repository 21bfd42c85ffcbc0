package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Partner represents a business partner that owns an aggregate balance.
// The balance is never written directly by callers; it is only moved by the
// sale/transaction mutation engines and the reconciliation engine.
type Partner struct {
	ID        string
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDelta returns the balance after applying a signed delta.
func (p *Partner) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return p.Balance.Add(delta)
}
