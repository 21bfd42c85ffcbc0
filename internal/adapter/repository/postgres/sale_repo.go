package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// SaleRepository implements usecase.SaleRepository.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

const createSale = `
INSERT INTO sale_entries (id, sale_date, partner_id, online_amount, cash_amount, amount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Create inserts a sale entry. The unique index on sale_date backs the
// one-entry-per-date rule even under concurrent inserts.
func (r *SaleRepository) Create(ctx context.Context, tx usecase.Transaction, sale *domain.SaleEntry) error {
	_, err := txQuerier(tx).Exec(ctx, createSale,
		sale.ID,
		timeToPgDate(sale.SaleDate),
		sale.PartnerID,
		decimalToNumeric(sale.OnlineAmount),
		decimalToNumeric(sale.CashAmount),
		decimalToNumeric(sale.Amount),
		timeToPgTimestamptz(sale.CreatedAt),
		timeToPgTimestamptz(sale.UpdatedAt),
	)

	return mapSaleDateConflict(err)
}

const getSaleByID = `
SELECT id, sale_date, partner_id, online_amount, cash_amount, amount, created_at, updated_at
FROM sale_entries WHERE id = $1
`

// GetByID retrieves a sale entry by ID.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*domain.SaleEntry, error) {
	return scanSale(r.pool.QueryRow(ctx, getSaleByID, id))
}

const getSaleByIDForUpdate = getSaleByID + ` FOR UPDATE`

// GetByIDForUpdate retrieves a sale entry by ID with a FOR UPDATE lock.
func (r *SaleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SaleEntry, error) {
	return scanSale(txQuerier(tx).QueryRow(ctx, getSaleByIDForUpdate, id))
}

const saleExistsForDate = `
SELECT EXISTS(SELECT 1 FROM sale_entries WHERE sale_date = $1)
`

// ExistsForDate reports whether any sale entry exists for the date.
func (r *SaleRepository) ExistsForDate(ctx context.Context, tx usecase.Transaction, date time.Time) (bool, error) {
	var exists bool
	err := txQuerier(tx).QueryRow(ctx, saleExistsForDate, timeToPgDate(date)).Scan(&exists)

	return exists, err
}

const updateSale = `
UPDATE sale_entries
SET sale_date = $2, partner_id = $3, online_amount = $4, cash_amount = $5, amount = $6, updated_at = $7
WHERE id = $1
`

// Update rewrites a sale entry.
func (r *SaleRepository) Update(ctx context.Context, tx usecase.Transaction, sale *domain.SaleEntry) error {
	tag, err := txQuerier(tx).Exec(ctx, updateSale,
		sale.ID,
		timeToPgDate(sale.SaleDate),
		sale.PartnerID,
		decimalToNumeric(sale.OnlineAmount),
		decimalToNumeric(sale.CashAmount),
		decimalToNumeric(sale.Amount),
		timeToPgTimestamptz(sale.UpdatedAt),
	)
	if err != nil {
		return mapSaleDateConflict(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}

	return nil
}

const deleteSale = `
DELETE FROM sale_entries WHERE id = $1
`

// Delete removes a sale entry.
func (r *SaleRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, deleteSale, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}

	return nil
}

const listSalesByMonth = `
SELECT id, sale_date, partner_id, online_amount, cash_amount, amount, created_at, updated_at
FROM sale_entries
WHERE sale_date >= $1 AND sale_date < $2
ORDER BY sale_date
`

// ListByMonth lists all sale entries in a calendar month.
func (r *SaleRepository) ListByMonth(ctx context.Context, year int, month time.Month) ([]*domain.SaleEntry, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows, err := r.pool.Query(ctx, listSalesByMonth, timeToPgDate(from), timeToPgDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]*domain.SaleEntry, 0)
	for rows.Next() {
		sale, err := scanSaleRow(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	return sales, rows.Err()
}

const summarizeMonth = `
SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(online_amount), 0), COALESCE(SUM(cash_amount), 0)
FROM sale_entries
WHERE sale_date >= $1 AND sale_date < $2
`

// SummarizeMonth returns the month's total, online and cash sums.
func (r *SaleRepository) SummarizeMonth(ctx context.Context, year int, month time.Month) (total, online, cash decimal.Decimal, err error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var totalN, onlineN, cashN pgtype.Numeric
	err = r.pool.QueryRow(ctx, summarizeMonth, timeToPgDate(from), timeToPgDate(to)).Scan(&totalN, &onlineN, &cashN)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(totalN), numericToDecimal(onlineN), numericToDecimal(cashN), nil
}

func scanSale(row pgx.Row) (*domain.SaleEntry, error) {
	sale, err := scanSaleRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSaleNotFound
		}

		return nil, err
	}

	return sale, nil
}

func scanSaleRow(row pgx.Row) (*domain.SaleEntry, error) {
	var (
		s         domain.SaleEntry
		saleDate  pgtype.Date
		online    pgtype.Numeric
		cash      pgtype.Numeric
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(&s.ID, &saleDate, &s.PartnerID, &online, &cash, &amount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	s.SaleDate = saleDate.Time.UTC()
	s.OnlineAmount = numericToDecimal(online)
	s.CashAmount = numericToDecimal(cash)
	s.Amount = numericToDecimal(amount)
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// mapSaleDateConflict maps the sale_date unique violation to the domain
// error so a concurrent duplicate insert surfaces the same way as the
// pre-check.
func mapSaleDateConflict(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrDuplicateSaleDate
	}

	return err
}
