package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
)

// PartnerRepository defines data access for partners.
type PartnerRepository interface {
	Create(ctx context.Context, partner *domain.Partner) error
	GetByID(ctx context.Context, id string) (*domain.Partner, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Partner, error)
	// AdjustBalance applies a signed delta to a partner's balance with an
	// atomic in-place update, serializing concurrent writers on the row lock.
	AdjustBalance(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Partner, error)
}

// SaleRepository defines data access for daily sale entries.
type SaleRepository interface {
	Create(ctx context.Context, tx Transaction, sale *domain.SaleEntry) error
	GetByID(ctx context.Context, id string) (*domain.SaleEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.SaleEntry, error)
	ExistsForDate(ctx context.Context, tx Transaction, date time.Time) (bool, error)
	Update(ctx context.Context, tx Transaction, sale *domain.SaleEntry) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByMonth(ctx context.Context, year int, month time.Month) ([]*domain.SaleEntry, error)
	SummarizeMonth(ctx context.Context, year int, month time.Month) (total, online, cash decimal.Decimal, err error)
}

// TransactionRepository defines data access for partner transactions in both
// the business and personal domains.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByPartner(ctx context.Context, partnerID string, dom domain.TransactionDomain, status *domain.TransactionStatus, limit, offset int) ([]*domain.Transaction, error)
}

// PairwiseRepository defines data access for personal-domain pair balances.
type PairwiseRepository interface {
	Get(ctx context.Context, partnerA, partnerB string) (*domain.PairwiseBalance, error)
	// ApplyDelta upserts the canonical pair row, creating it with the delta
	// as initial value when absent.
	ApplyDelta(ctx context.Context, tx Transaction, partnerA, partnerB string, delta decimal.Decimal, updatedAt time.Time) error
}

// LedgerRepository defines the ledger-wide bulk operations used by the
// reconciliation engine.
type LedgerRepository interface {
	ResetAllBalances(ctx context.Context, tx Transaction, updatedAt time.Time) error
	ApplySaleTotals(ctx context.Context, tx Transaction, updatedAt time.Time) error
	ApplyApprovedBusinessNet(ctx context.Context, tx Transaction, updatedAt time.Time) error
	RebuildPairwiseBalances(ctx context.Context, tx Transaction, updatedAt time.Time) error
	// BalanceDrift compares each partner's recorded balance against the value
	// derived from sales and approved business transactions.
	BalanceDrift(ctx context.Context) ([]BalanceDrift, error)
}

// BalanceDrift is one partner's recorded-versus-derived balance comparison.
type BalanceDrift struct {
	PartnerID       string
	RecordedBalance decimal.Decimal
	DerivedBalance  decimal.Decimal
	Difference      decimal.Decimal
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	// BeginSerializable starts a serializable transaction; the reconciliation
	// engine runs inside one so it never observes a half-applied mutation.
	BeginSerializable(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on retryable storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
