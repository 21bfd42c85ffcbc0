package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// PairwiseRepository implements usecase.PairwiseRepository.
type PairwiseRepository struct {
	pool *pgxpool.Pool
}

// NewPairwiseRepository creates a new PairwiseRepository.
func NewPairwiseRepository(pool *pgxpool.Pool) *PairwiseRepository {
	return &PairwiseRepository{pool: pool}
}

const getPairwiseBalance = `
SELECT partner_a, partner_b, balance_amount, created_at, updated_at
FROM pairwise_balances
WHERE partner_a = $1 AND partner_b = $2
`

// Get retrieves the balance row for a canonical pair. Callers pass IDs in any
// order; they are canonicalized here.
func (r *PairwiseRepository) Get(ctx context.Context, partnerA, partnerB string) (*domain.PairwiseBalance, error) {
	lo, hi := domain.CanonicalPair(partnerA, partnerB)

	var (
		pb        domain.PairwiseBalance
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, getPairwiseBalance, lo, hi).Scan(
		&pb.PartnerA, &pb.PartnerB, &balance, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	pb.BalanceAmount = numericToDecimal(balance)
	pb.CreatedAt = createdAt.Time
	pb.UpdatedAt = updatedAt.Time

	return &pb, nil
}

const applyPairwiseDelta = `
INSERT INTO pairwise_balances (partner_a, partner_b, balance_amount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (partner_a, partner_b)
DO UPDATE SET balance_amount = pairwise_balances.balance_amount + EXCLUDED.balance_amount, updated_at = EXCLUDED.updated_at
`

// ApplyDelta upserts the pair row, adding the signed delta to the existing
// balance or seeding a new row with it.
func (r *PairwiseRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, partnerA, partnerB string, delta decimal.Decimal, updatedAt time.Time) error {
	lo, hi := domain.CanonicalPair(partnerA, partnerB)

	_, err := txQuerier(tx).Exec(ctx, applyPairwiseDelta,
		lo, hi, decimalToNumeric(delta), timeToPgTimestamptz(updatedAt))

	return err
}
