package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
)

// BalanceSink is the projection an approved transaction's amount lands in.
// The business domain projects into each partner's aggregate balance; the
// personal domain projects into the pairwise net balance. Apply and Reverse
// are exact inverses so un-approving or deleting a transaction restores the
// prior state.
type BalanceSink interface {
	Apply(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	Reverse(ctx context.Context, tx Transaction, txn *domain.Transaction) error
}

// AggregateBalanceSink projects business transactions into Partner.Balance:
// the sender is debited and the receiver credited.
type AggregateBalanceSink struct {
	partnerRepo PartnerRepository
}

// NewAggregateBalanceSink creates a sink over the partner balance column.
func NewAggregateBalanceSink(partnerRepo PartnerRepository) *AggregateBalanceSink {
	return &AggregateBalanceSink{partnerRepo: partnerRepo}
}

// Apply debits the sender and credits the receiver.
func (s *AggregateBalanceSink) Apply(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	return s.adjust(ctx, tx, txn, txn.Amount)
}

// Reverse undoes a previously applied transaction.
func (s *AggregateBalanceSink) Reverse(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	return s.adjust(ctx, tx, txn, txn.Amount.Neg())
}

func (s *AggregateBalanceSink) adjust(ctx context.Context, tx Transaction, txn *domain.Transaction, amount decimal.Decimal) error {
	now := time.Now().UTC()

	deltas := map[string]decimal.Decimal{
		txn.FromPartnerID: amount.Neg(),
		txn.ToPartnerID:   amount,
	}

	// Touch partner rows in sorted order so concurrent approvals cannot
	// deadlock.
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s.partnerRepo.AdjustBalance(ctx, tx, id, deltas[id], now); err != nil {
			return err
		}
	}

	return nil
}

// PairwiseBalanceSink projects personal transactions into the pair's net
// balance row, using the canonical sign rule from domain.PairwiseDelta.
type PairwiseBalanceSink struct {
	pairRepo PairwiseRepository
}

// NewPairwiseBalanceSink creates a sink over the pairwise balance table.
func NewPairwiseBalanceSink(pairRepo PairwiseRepository) *PairwiseBalanceSink {
	return &PairwiseBalanceSink{pairRepo: pairRepo}
}

// Apply adds the transaction's signed delta to the pair balance.
func (s *PairwiseBalanceSink) Apply(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	lo, hi := domain.CanonicalPair(txn.FromPartnerID, txn.ToPartnerID)
	delta := domain.PairwiseDelta(txn.FromPartnerID, txn.ToPartnerID, txn.Amount)

	return s.pairRepo.ApplyDelta(ctx, tx, lo, hi, delta, time.Now().UTC())
}

// Reverse subtracts the transaction's signed delta from the pair balance.
func (s *PairwiseBalanceSink) Reverse(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	lo, hi := domain.CanonicalPair(txn.FromPartnerID, txn.ToPartnerID)
	delta := domain.PairwiseDelta(txn.FromPartnerID, txn.ToPartnerID, txn.Amount).Neg()

	return s.pairRepo.ApplyDelta(ctx, tx, lo, hi, delta, time.Now().UTC())
}
