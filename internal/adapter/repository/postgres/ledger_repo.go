package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/annuu1/finance-partner/internal/usecase"
)

// LedgerRepository implements the bulk ledger operations used by the
// reconciliation engine. All mutating statements run inside the serializable
// transaction the engine opens.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const resetAllBalances = `
UPDATE partners SET balance = 0, updated_at = $1
`

// ResetAllBalances zeroes every partner balance.
func (r *LedgerRepository) ResetAllBalances(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	_, err := txQuerier(tx).Exec(ctx, resetAllBalances, timeToPgTimestamptz(updatedAt))

	return err
}

const applySaleTotals = `
UPDATE partners p
SET balance = p.balance + s.total, updated_at = $1
FROM (
    SELECT partner_id, SUM(amount) AS total
    FROM sale_entries
    WHERE partner_id IS NOT NULL
    GROUP BY partner_id
) s
WHERE p.id = s.partner_id
`

// ApplySaleTotals credits each partner with the sum of their attributed sales.
func (r *LedgerRepository) ApplySaleTotals(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	_, err := txQuerier(tx).Exec(ctx, applySaleTotals, timeToPgTimestamptz(updatedAt))

	return err
}

const applyApprovedBusinessNet = `
UPDATE partners p
SET balance = p.balance + n.net, updated_at = $1
FROM (
    SELECT partner_id, SUM(delta) AS net
    FROM (
        SELECT from_partner_id AS partner_id, -amount AS delta
        FROM transactions
        WHERE domain = 'business' AND status = 'approved'
        UNION ALL
        SELECT to_partner_id AS partner_id, amount AS delta
        FROM transactions
        WHERE domain = 'business' AND status = 'approved'
    ) moves
    GROUP BY partner_id
) n
WHERE p.id = n.partner_id
`

// ApplyApprovedBusinessNet applies the net of approved business transactions:
// each one debits the sender and credits the receiver.
func (r *LedgerRepository) ApplyApprovedBusinessNet(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	_, err := txQuerier(tx).Exec(ctx, applyApprovedBusinessNet, timeToPgTimestamptz(updatedAt))

	return err
}

const clearPairwiseBalances = `
DELETE FROM pairwise_balances
`

const rebuildPairwiseBalances = `
INSERT INTO pairwise_balances (partner_a, partner_b, balance_amount, created_at, updated_at)
SELECT
    LEAST(from_partner_id, to_partner_id),
    GREATEST(from_partner_id, to_partner_id),
    SUM(CASE WHEN from_partner_id < to_partner_id THEN -amount ELSE amount END),
    $1, $1
FROM transactions
WHERE domain = 'personal' AND status = 'approved'
GROUP BY 1, 2
`

// RebuildPairwiseBalances drops and recomputes every pair balance from
// approved personal transactions, using the same sign convention as the
// incremental path.
func (r *LedgerRepository) RebuildPairwiseBalances(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	if _, err := txQuerier(tx).Exec(ctx, clearPairwiseBalances); err != nil {
		return err
	}

	_, err := txQuerier(tx).Exec(ctx, rebuildPairwiseBalances, timeToPgTimestamptz(updatedAt))

	return err
}

const balanceDrift = `
SELECT p.id,
       p.balance,
       COALESCE(s.total, 0) + COALESCE(n.net, 0) AS derived
FROM partners p
LEFT JOIN (
    SELECT partner_id, SUM(amount) AS total
    FROM sale_entries
    WHERE partner_id IS NOT NULL
    GROUP BY partner_id
) s ON s.partner_id = p.id
LEFT JOIN (
    SELECT partner_id, SUM(delta) AS net
    FROM (
        SELECT from_partner_id AS partner_id, -amount AS delta
        FROM transactions
        WHERE domain = 'business' AND status = 'approved'
        UNION ALL
        SELECT to_partner_id AS partner_id, amount AS delta
        FROM transactions
        WHERE domain = 'business' AND status = 'approved'
    ) moves
    GROUP BY partner_id
) n ON n.partner_id = p.id
ORDER BY p.id
`

// BalanceDrift compares each partner's recorded balance against the value
// derived from first principles, without mutating anything.
func (r *LedgerRepository) BalanceDrift(ctx context.Context) ([]usecase.BalanceDrift, error) {
	rows, err := r.pool.Query(ctx, balanceDrift)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drifts := make([]usecase.BalanceDrift, 0)
	for rows.Next() {
		var (
			d        usecase.BalanceDrift
			recorded pgtype.Numeric
			derived  pgtype.Numeric
		)

		if err := rows.Scan(&d.PartnerID, &recorded, &derived); err != nil {
			return nil, err
		}

		d.RecordedBalance = numericToDecimal(recorded)
		d.DerivedBalance = numericToDecimal(derived)
		d.Difference = d.RecordedBalance.Sub(d.DerivedBalance)
		drifts = append(drifts, d)
	}

	return drifts, rows.Err()
}
