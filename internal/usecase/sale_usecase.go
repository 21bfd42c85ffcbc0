package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/infrastructure/metrics"
)

// SaleUseCase handles daily sale entries. Every mutation adjusts the
// attributed partner's balance inside the same database transaction, so a
// sale row and its balance effect are never visible apart.
type SaleUseCase struct {
	txManager   TransactionManager
	saleRepo    SaleRepository
	partnerRepo PartnerRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
}

// NewSaleUseCase creates a new SaleUseCase. outboxRepo, auditRepo, cache and
// metrics may be nil.
func NewSaleUseCase(
	txManager TransactionManager,
	saleRepo SaleRepository,
	partnerRepo PartnerRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
) *SaleUseCase {
	return &SaleUseCase{
		txManager:   txManager,
		saleRepo:    saleRepo,
		partnerRepo: partnerRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
	}
}

// CreateSaleInput represents input for recording a day's sale.
type CreateSaleInput struct {
	SaleDate     time.Time
	PartnerID    *string
	OnlineAmount decimal.Decimal
	CashAmount   decimal.Decimal
}

// CreateSale records a sale for a calendar date. At most one sale entry may
// exist per date system-wide; a duplicate fails with ErrDuplicateSaleDate
// before anything is written.
func (uc *SaleUseCase) CreateSale(ctx context.Context, input CreateSaleInput) (*domain.SaleEntry, error) {
	if err := domain.ValidateSaleAmounts(input.OnlineAmount, input.CashAmount); err != nil {
		return nil, err
	}

	if input.PartnerID != nil && *input.PartnerID != "" {
		if _, err := uc.partnerRepo.GetByID(ctx, *input.PartnerID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	sale := &domain.SaleEntry{
		ID:           uc.idGen.Generate(),
		SaleDate:     domain.NormalizeDate(input.SaleDate),
		PartnerID:    input.PartnerID,
		OnlineAmount: input.OnlineAmount,
		CashAmount:   input.CashAmount,
		Amount:       input.OnlineAmount.Add(input.CashAmount),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	exists, err := uc.saleRepo.ExistsForDate(txCtx, tx, sale.SaleDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateSaleDate
	}

	if err := uc.saleRepo.Create(txCtx, tx, sale); err != nil {
		return nil, err
	}

	if sale.Attributed() {
		if err := uc.partnerRepo.AdjustBalance(txCtx, tx, *sale.PartnerID, sale.Amount, now); err != nil {
			return nil, err
		}
	}

	if err := uc.emitEvent(txCtx, tx, sale, domain.EventTypeSaleCreated, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, sale.PartnerID)

	if uc.metrics != nil {
		uc.metrics.SalesRecorded.Inc()
		amount, _ := sale.Amount.Float64()
		uc.metrics.SaleAmount.Observe(amount)
	}

	uc.audit(ctx, domain.AuditActionSaleCreate, sale.ID, nil, domain.MarshalState(sale))

	return sale, nil
}

// UpdateSaleInput represents a correction to an existing sale entry. Nil
// fields are left unchanged; ClearPartner detaches the sale from its partner.
type UpdateSaleInput struct {
	SaleDate     *time.Time
	PartnerID    *string
	ClearPartner bool
	OnlineAmount *decimal.Decimal
	CashAmount   *decimal.Decimal
}

// UpdateSale edits a sale entry. When the partner or amount changes, the old
// contribution is reversed from the old partner and the new contribution
// applied to the new one, all in one transaction.
func (uc *SaleUseCase) UpdateSale(ctx context.Context, id string, input UpdateSaleInput) (*domain.SaleEntry, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	sale, err := uc.saleRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(sale)

	old := *sale
	now := time.Now().UTC()

	if input.SaleDate != nil {
		newDate := domain.NormalizeDate(*input.SaleDate)
		if !newDate.Equal(sale.SaleDate) {
			exists, err := uc.saleRepo.ExistsForDate(txCtx, tx, newDate)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateSaleDate
			}
			sale.SaleDate = newDate
		}
	}

	switch {
	case input.ClearPartner:
		sale.PartnerID = nil
	case input.PartnerID != nil:
		if _, err := uc.partnerRepo.GetByID(ctx, *input.PartnerID); err != nil {
			return nil, err
		}
		sale.PartnerID = input.PartnerID
	}

	if input.OnlineAmount != nil {
		sale.OnlineAmount = *input.OnlineAmount
	}
	if input.CashAmount != nil {
		sale.CashAmount = *input.CashAmount
	}
	sale.Amount = sale.OnlineAmount.Add(sale.CashAmount)
	sale.UpdatedAt = now

	if err := sale.Validate(); err != nil {
		return nil, err
	}

	if err := uc.applyDelta(txCtx, tx, &old, sale, now); err != nil {
		return nil, err
	}

	if err := uc.saleRepo.Update(txCtx, tx, sale); err != nil {
		return nil, err
	}

	if err := uc.emitEvent(txCtx, tx, sale, domain.EventTypeSaleUpdated, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, old.PartnerID)
	uc.invalidateBalance(ctx, sale.PartnerID)

	uc.audit(ctx, domain.AuditActionSaleUpdate, sale.ID, before, domain.MarshalState(sale))

	return sale, nil
}

// DeleteSale removes a sale entry and reverses its balance contribution.
func (uc *SaleUseCase) DeleteSale(ctx context.Context, id string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	sale, err := uc.saleRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if sale.Attributed() {
		if err := uc.partnerRepo.AdjustBalance(txCtx, tx, *sale.PartnerID, sale.Amount.Neg(), now); err != nil {
			return err
		}
	}

	if err := uc.saleRepo.Delete(txCtx, tx, id); err != nil {
		return err
	}

	if err := uc.emitEvent(txCtx, tx, sale, domain.EventTypeSaleDeleted, now); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.invalidateBalance(ctx, sale.PartnerID)

	uc.audit(ctx, domain.AuditActionSaleDelete, sale.ID, domain.MarshalState(sale), nil)

	return nil
}

// GetSale retrieves a sale entry by ID.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*domain.SaleEntry, error) {
	return uc.saleRepo.GetByID(ctx, id)
}

// ListSalesByMonth lists all sale entries recorded for a calendar month.
func (uc *SaleUseCase) ListSalesByMonth(ctx context.Context, year int, month time.Month) ([]*domain.SaleEntry, error) {
	return uc.saleRepo.ListByMonth(ctx, year, month)
}

// MonthlySalesSummary aggregates one month's sales.
type MonthlySalesSummary struct {
	Year        int
	Month       time.Month
	TotalAmount decimal.Decimal
	TotalOnline decimal.Decimal
	TotalCash   decimal.Decimal
}

// SummarizeMonth returns the month's total/online/cash sales.
func (uc *SaleUseCase) SummarizeMonth(ctx context.Context, year int, month time.Month) (*MonthlySalesSummary, error) {
	total, online, cash, err := uc.saleRepo.SummarizeMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	return &MonthlySalesSummary{
		Year:        year,
		Month:       month,
		TotalAmount: total,
		TotalOnline: online,
		TotalCash:   cash,
	}, nil
}

// applyDelta reverses the old sale's contribution and applies the new one
// when the attribution or amount changed. Partner rows are touched in sorted
// order so concurrent edits cannot deadlock.
func (uc *SaleUseCase) applyDelta(ctx context.Context, tx Transaction, prev, next *domain.SaleEntry, now time.Time) error {
	samePartner := (prev.PartnerID == nil && next.PartnerID == nil) ||
		(prev.PartnerID != nil && next.PartnerID != nil && *prev.PartnerID == *next.PartnerID)

	if samePartner && prev.Amount.Equal(next.Amount) {
		return nil
	}

	deltas := make(map[string]decimal.Decimal)
	if prev.Attributed() {
		deltas[*prev.PartnerID] = deltas[*prev.PartnerID].Sub(prev.Amount)
	}
	if next.Attributed() {
		deltas[*next.PartnerID] = deltas[*next.PartnerID].Add(next.Amount)
	}

	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if deltas[id].IsZero() {
			continue
		}
		if err := uc.partnerRepo.AdjustBalance(ctx, tx, id, deltas[id], now); err != nil {
			return err
		}
	}

	return nil
}

func (uc *SaleUseCase) emitEvent(ctx context.Context, tx Transaction, sale *domain.SaleEntry, eventType string, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}

	payload := map[string]any{
		"sale_id":   sale.ID,
		"sale_date": sale.SaleDate.Format("2006-01-02"),
		"amount":    sale.Amount.String(),
	}
	if sale.PartnerID != nil {
		payload["partner_id"] = *sale.PartnerID
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   sale.ID,
		AggregateType: domain.AggregateTypeSale,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *SaleUseCase) invalidateBalance(ctx context.Context, partnerID *string) {
	if uc.cache == nil || partnerID == nil || *partnerID == "" {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKeyPrefix+*partnerID)
}

func (uc *SaleUseCase) audit(ctx context.Context, action domain.AuditAction, resourceID string, before, after domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      domain.ActorFromContext(ctx),
		Action:       string(action),
		ResourceType: domain.AggregateTypeSale,
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	_ = uc.auditRepo.Create(ctx, log)
}
