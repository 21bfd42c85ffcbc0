package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, domain, from_partner_id, to_partner_id, amount, status, approved_by, approved_at, rejection_reason, transaction_date, created_at, updated_at`

const createTransaction = `
INSERT INTO transactions (` + transactionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Create inserts a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	_, err := txQuerier(tx).Exec(ctx, createTransaction,
		txn.ID,
		string(txn.Domain),
		txn.FromPartnerID,
		txn.ToPartnerID,
		decimalToNumeric(txn.Amount),
		string(txn.Status),
		txn.ApprovedBy,
		ptrToPgTimestamptz(txn.ApprovedAt),
		txn.RejectionReason,
		timeToPgDate(txn.TransactionDate),
		timeToPgTimestamptz(txn.CreatedAt),
		timeToPgTimestamptz(txn.UpdatedAt),
	)

	return err
}

const getTransactionByID = `
SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1
`

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, getTransactionByID, id))
}

const getTransactionByIDForUpdate = getTransactionByID + ` FOR UPDATE`

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE lock so a
// concurrent transition on the same row blocks until this one commits.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return scanTransaction(txQuerier(tx).QueryRow(ctx, getTransactionByIDForUpdate, id))
}

const updateTransaction = `
UPDATE transactions
SET amount = $2, status = $3, approved_by = $4, approved_at = $5, rejection_reason = $6, transaction_date = $7, updated_at = $8
WHERE id = $1
`

// Update rewrites a transaction's mutable fields.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	tag, err := txQuerier(tx).Exec(ctx, updateTransaction,
		txn.ID,
		decimalToNumeric(txn.Amount),
		string(txn.Status),
		txn.ApprovedBy,
		ptrToPgTimestamptz(txn.ApprovedAt),
		txn.RejectionReason,
		timeToPgDate(txn.TransactionDate),
		timeToPgTimestamptz(txn.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = $1
`

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, deleteTransaction, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

const listTransactionsByPartner = `
SELECT ` + transactionColumns + ` FROM transactions
WHERE domain = $1 AND (from_partner_id = $2 OR to_partner_id = $2) AND ($3::text IS NULL OR status = $3)
ORDER BY transaction_date DESC, created_at DESC
LIMIT $4 OFFSET $5
`

// ListByPartner lists a partner's transactions in one domain, optionally
// filtered by status.
func (r *TransactionRepository) ListByPartner(ctx context.Context, partnerID string, dom domain.TransactionDomain, status *domain.TransactionStatus, limit, offset int) ([]*domain.Transaction, error) {
	var statusFilter *string
	if status != nil {
		s := string(*status)
		statusFilter = &s
	}

	rows, err := r.pool.Query(ctx, listTransactionsByPartner,
		string(dom), partnerID, statusFilter, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]*domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	txn, err := scanTransactionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return txn, nil
}

func scanTransactionRow(row pgx.Row) (*domain.Transaction, error) {
	var (
		t          domain.Transaction
		dom        string
		amount     pgtype.Numeric
		status     string
		approvedAt pgtype.Timestamptz
		txDate     pgtype.Date
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID,
		&dom,
		&t.FromPartnerID,
		&t.ToPartnerID,
		&amount,
		&status,
		&t.ApprovedBy,
		&approvedAt,
		&t.RejectionReason,
		&txDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Domain = domain.TransactionDomain(dom)
	t.Amount = numericToDecimal(amount)
	t.Status = domain.TransactionStatus(status)
	t.ApprovedAt = pgTimestamptzToPtr(approvedAt)
	t.TransactionDate = txDate.Time.UTC()
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}
