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

// PartnerRepository implements usecase.PartnerRepository.
type PartnerRepository struct {
	pool *pgxpool.Pool
}

// NewPartnerRepository creates a new PartnerRepository.
func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

const createPartner = `
INSERT INTO partners (id, name, balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`

// Create creates a new partner.
func (r *PartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	_, err := r.pool.Exec(ctx, createPartner,
		partner.ID,
		partner.Name,
		decimalToNumeric(partner.Balance),
		timeToPgTimestamptz(partner.CreatedAt),
		timeToPgTimestamptz(partner.UpdatedAt),
	)

	return err
}

const getPartnerByID = `
SELECT id, name, balance, created_at, updated_at FROM partners WHERE id = $1
`

// GetByID retrieves a partner by ID.
func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	return scanPartner(r.pool.QueryRow(ctx, getPartnerByID, id))
}

const getPartnerByIDForUpdate = `
SELECT id, name, balance, created_at, updated_at FROM partners WHERE id = $1 FOR UPDATE
`

// GetByIDForUpdate retrieves a partner by ID with a FOR UPDATE lock.
func (r *PartnerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Partner, error) {
	return scanPartner(txQuerier(tx).QueryRow(ctx, getPartnerByIDForUpdate, id))
}

const adjustPartnerBalance = `
UPDATE partners SET balance = balance + $2, updated_at = $3 WHERE id = $1
`

// AdjustBalance applies a signed delta to the partner's balance. The in-place
// increment serializes concurrent writers on the row lock, so no lost update
// is possible.
func (r *PartnerRepository) AdjustBalance(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx, adjustPartnerBalance,
		id,
		decimalToNumeric(delta),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPartnerNotFound
	}

	return nil
}

const listPartners = `
SELECT id, name, balance, created_at, updated_at FROM partners ORDER BY name LIMIT $1 OFFSET $2
`

// List lists partners with pagination.
func (r *PartnerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Partner, error) {
	rows, err := r.pool.Query(ctx, listPartners, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	partners := make([]*domain.Partner, 0)
	for rows.Next() {
		partner, err := scanPartnerRow(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, partner)
	}

	return partners, rows.Err()
}

func scanPartner(row pgx.Row) (*domain.Partner, error) {
	partner, err := scanPartnerRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPartnerNotFound
		}

		return nil, err
	}

	return partner, nil
}

func scanPartnerRow(row pgx.Row) (*domain.Partner, error) {
	var (
		p         domain.Partner
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(&p.ID, &p.Name, &balance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.Balance = numericToDecimal(balance)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
