package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PairwiseBalance is the net balance between two partners in the personal
// domain, keyed by the canonically ordered pair (PartnerA < PartnerB).
//
// Sign convention: an approved transaction from the lower-ID partner to the
// higher-ID partner subtracts its amount from BalanceAmount; a transaction in
// the other direction adds it. Reversals flip the sign.
type PairwiseBalance struct {
	PartnerA      string
	PartnerB      string
	BalanceAmount decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanonicalPair orders two partner IDs into the (lo, hi) storage key.
func CanonicalPair(a, b string) (lo, hi string) {
	if a < b {
		return a, b
	}

	return b, a
}

// PairwiseDelta returns the signed delta an approved transaction applies to
// the pair's balance: -amount when the sender is the lower ID, +amount
// otherwise.
func PairwiseDelta(from, to string, amount decimal.Decimal) decimal.Decimal {
	lo, _ := CanonicalPair(from, to)
	if from == lo {
		return amount.Neg()
	}

	return amount
}
