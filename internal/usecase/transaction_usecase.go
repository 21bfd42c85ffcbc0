package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/infrastructure/metrics"
)

// TransactionUseCase is the approval engine for partner transactions. All
// status transitions run through it, and every transition that changes
// whether a row is approved applies or reverses the amount through the
// domain's balance sink inside the same database transaction.
type TransactionUseCase struct {
	txManager       TransactionManager
	transactionRepo TransactionRepository
	partnerRepo     PartnerRepository
	sinks           map[domain.TransactionDomain]BalanceSink
	outboxRepo      OutboxRepository
	auditRepo       AuditRepository
	idGen           IDGenerator
	cache           Cache
	metrics         *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase. outboxRepo,
// auditRepo, cache and metrics may be nil.
func NewTransactionUseCase(
	txManager TransactionManager,
	transactionRepo TransactionRepository,
	partnerRepo PartnerRepository,
	sinks map[domain.TransactionDomain]BalanceSink,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		partnerRepo:     partnerRepo,
		sinks:           sinks,
		outboxRepo:      outboxRepo,
		auditRepo:       auditRepo,
		idGen:           idGen,
		cache:           cache,
		metrics:         m,
	}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	Domain          domain.TransactionDomain
	FromPartnerID   string
	ToPartnerID     string
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// CreateTransaction records a new transaction with status pending. Pending
// rows never touch balances.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateTransactionAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	date := input.TransactionDate
	if date.IsZero() {
		date = now
	}

	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		Domain:          input.Domain,
		FromPartnerID:   input.FromPartnerID,
		ToPartnerID:     input.ToPartnerID,
		Amount:          input.Amount,
		Status:          domain.StatusPending,
		TransactionDate: domain.NormalizeDate(date),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	// Both partners must exist before a row referencing them is written.
	for _, id := range []string{input.FromPartnerID, input.ToPartnerID} {
		if _, err := uc.partnerRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.transactionRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.emitEvent(txCtx, tx, txn, domain.EventTypeTransactionCreated, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.WithLabelValues(string(txn.Domain)).Inc()
	}

	uc.audit(ctx, domain.AuditActionTransactionCreate, txn.ID, nil, domain.MarshalState(txn))

	return txn, nil
}

// ApproveTransaction transitions a pending transaction to approved and
// applies its amount to the domain's balance projection. Only the receiving
// partner may approve; a second approve of the same row fails with
// ErrInvalidState and leaves balances untouched.
func (uc *TransactionUseCase) ApproveTransaction(ctx context.Context, id, actorID string) (*domain.Transaction, error) {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	txn, err := uc.transactionRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(txn)

	now := time.Now().UTC()
	if err := txn.Approve(actorID, now); err != nil {
		return nil, err
	}

	if err := uc.transactionRepo.Update(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.sink(txn).Apply(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.emitEvent(txCtx, tx, txn, domain.EventTypeTransactionApproved, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, txn)

	if uc.metrics != nil {
		uc.metrics.TransactionsDecided.WithLabelValues(string(txn.Domain), string(domain.StatusApproved)).Inc()
		uc.metrics.ApprovalDuration.Observe(time.Since(start).Seconds())
	}

	uc.audit(ctx, domain.AuditActionTransactionApprove, txn.ID, before, domain.MarshalState(txn))

	return txn, nil
}

// RejectTransaction transitions a pending transaction to rejected. Rejected
// rows never affect balances.
func (uc *TransactionUseCase) RejectTransaction(ctx context.Context, id, actorID string, reason *string) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	txn, err := uc.transactionRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(txn)

	now := time.Now().UTC()
	if err := txn.Reject(actorID, reason, now); err != nil {
		return nil, err
	}

	if err := uc.transactionRepo.Update(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.emitEvent(txCtx, tx, txn, domain.EventTypeTransactionRejected, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsDecided.WithLabelValues(string(txn.Domain), string(domain.StatusRejected)).Inc()
	}

	uc.audit(ctx, domain.AuditActionTransactionReject, txn.ID, before, domain.MarshalState(txn))

	return txn, nil
}

// UpdateTransactionInput represents a correction to an existing transaction.
type UpdateTransactionInput struct {
	Amount          *decimal.Decimal
	TransactionDate *time.Time
	// ResetToPending reopens an approved transaction for correction, clearing
	// its approval metadata and reversing its balance effect.
	ResetToPending bool
}

// UpdateTransaction edits a transaction. Balance effects follow the approval
// gate: an approved row whose amount changes has the old amount reversed and
// the new amount applied; a row leaving the approved state is reversed; rows
// that stay non-approved never move balances.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	if input.Amount != nil {
		if err := domain.ValidateTransactionAmount(*input.Amount); err != nil {
			return nil, err
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	txn, err := uc.transactionRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(txn)

	now := time.Now().UTC()

	wasApproved := txn.IsApproved()
	oldAmount := txn.Amount

	if input.ResetToPending {
		if err := txn.ResetToPending(now); err != nil {
			return nil, err
		}
	}

	if input.Amount != nil {
		txn.Amount = *input.Amount
	}

	if input.TransactionDate != nil {
		txn.TransactionDate = domain.NormalizeDate(*input.TransactionDate)
	}

	txn.UpdatedAt = now

	isApproved := txn.IsApproved()
	amountChanged := !oldAmount.Equal(txn.Amount)

	switch {
	case wasApproved && !isApproved:
		old := *txn
		old.Amount = oldAmount
		if err := uc.sink(txn).Reverse(txCtx, tx, &old); err != nil {
			return nil, err
		}
	case !wasApproved && isApproved:
		if err := uc.sink(txn).Apply(txCtx, tx, txn); err != nil {
			return nil, err
		}
	case wasApproved && isApproved && amountChanged:
		old := *txn
		old.Amount = oldAmount
		if err := uc.sink(txn).Reverse(txCtx, tx, &old); err != nil {
			return nil, err
		}
		if err := uc.sink(txn).Apply(txCtx, tx, txn); err != nil {
			return nil, err
		}
	}

	if err := uc.transactionRepo.Update(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if input.ResetToPending {
		if err := uc.emitEvent(txCtx, tx, txn, domain.EventTypeTransactionReopened, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if wasApproved || isApproved {
		uc.invalidateBalances(ctx, txn)
	}

	uc.audit(ctx, domain.AuditActionTransactionUpdate, txn.ID, before, domain.MarshalState(txn))

	return txn, nil
}

// DeleteTransaction removes a transaction, reversing its balance effect when
// it was approved.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, id string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	txn, err := uc.transactionRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return err
	}

	if txn.IsApproved() {
		if err := uc.sink(txn).Reverse(txCtx, tx, txn); err != nil {
			return err
		}
	}

	if err := uc.transactionRepo.Delete(txCtx, tx, id); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uc.emitEvent(txCtx, tx, txn, domain.EventTypeTransactionDeleted, now); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if txn.IsApproved() {
		uc.invalidateBalances(ctx, txn)
	}

	uc.audit(ctx, domain.AuditActionTransactionDelete, txn.ID, domain.MarshalState(txn), nil)

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	PartnerID string
	Domain    domain.TransactionDomain
	Status    *domain.TransactionStatus
	Limit     int
	Offset    int
}

// ListTransactions lists transactions touching a partner.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.transactionRepo.ListByPartner(ctx, input.PartnerID, input.Domain, input.Status, limit, offset)
}

func (uc *TransactionUseCase) sink(txn *domain.Transaction) BalanceSink {
	return uc.sinks[txn.Domain]
}

func (uc *TransactionUseCase) emitEvent(ctx context.Context, tx Transaction, txn *domain.Transaction, eventType string, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}

	payload := map[string]any{
		"transaction_id":  txn.ID,
		"domain":          string(txn.Domain),
		"from_partner_id": txn.FromPartnerID,
		"to_partner_id":   txn.ToPartnerID,
		"amount":          txn.Amount.String(),
		"status":          string(txn.Status),
	}
	if txn.ApprovedBy != nil {
		payload["approved_by"] = *txn.ApprovedBy
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *TransactionUseCase) invalidateBalances(ctx context.Context, txn *domain.Transaction) {
	if uc.cache == nil {
		return
	}

	switch txn.Domain {
	case domain.DomainBusiness:
		_ = uc.cache.Delete(ctx, balanceCacheKeyPrefix+txn.FromPartnerID)
		_ = uc.cache.Delete(ctx, balanceCacheKeyPrefix+txn.ToPartnerID)
	case domain.DomainPersonal:
		lo, hi := domain.CanonicalPair(txn.FromPartnerID, txn.ToPartnerID)
		_ = uc.cache.Delete(ctx, pairwiseCacheKeyPrefix+lo+":"+hi)
	}
}

func (uc *TransactionUseCase) audit(ctx context.Context, action domain.AuditAction, resourceID string, before, after domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      domain.ActorFromContext(ctx),
		Action:       string(action),
		ResourceType: domain.AggregateTypeTransaction,
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	_ = uc.auditRepo.Create(ctx, log)
}
