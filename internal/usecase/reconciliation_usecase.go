package usecase

import (
	"context"
	"time"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/infrastructure/metrics"
)

// ReconciliationUseCase rebuilds balances from source events. It exists to
// repair drift and to bootstrap balances after migration; its output must be
// identical to what incremental mutation produces for the same history.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	ledgerRepo  LedgerRepository
	partnerRepo PartnerRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	cache       Cache
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase. auditRepo,
// retrier, cache and metrics may be nil.
func NewReconciliationUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	partnerRepo PartnerRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		ledgerRepo:  ledgerRepo,
		partnerRepo: partnerRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		retrier:     retrier,
		cache:       cache,
		metrics:     m,
	}
}

// ReconcileAllBalances rebuilds every balance from the full event history:
// partner balances are zeroed, set to their sale totals, then adjusted by the
// net of approved business transactions; the pairwise table is rebuilt from
// approved personal transactions. The whole rebuild runs in one serializable
// transaction and is retried on serialization failure.
func (uc *ReconciliationUseCase) ReconcileAllBalances(ctx context.Context) error {
	start := time.Now()

	run := func() error {
		txCtx, cancel := context.WithTimeout(ctx, ReconcileTimeout)
		defer cancel()

		tx, err := uc.txManager.BeginSerializable(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		now := time.Now().UTC()

		if err := uc.ledgerRepo.ResetAllBalances(txCtx, tx, now); err != nil {
			return err
		}

		if err := uc.ledgerRepo.ApplySaleTotals(txCtx, tx, now); err != nil {
			return err
		}

		if err := uc.ledgerRepo.ApplyApprovedBusinessNet(txCtx, tx, now); err != nil {
			return err
		}

		if err := uc.ledgerRepo.RebuildPairwiseBalances(txCtx, tx, now); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return err
	}

	uc.flushBalanceCache(ctx)

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
		uc.metrics.ReconciliationDuration.Observe(time.Since(start).Seconds())
	}

	uc.audit(ctx)

	return nil
}

// VerificationReport summarizes a read-only drift check.
type VerificationReport struct {
	TotalPartners int
	Drifted       []BalanceDrift
	Consistent    bool
	CheckedAt     time.Time
}

// VerifyBalances compares recorded balances against event-derived values
// without repairing anything.
func (uc *ReconciliationUseCase) VerifyBalances(ctx context.Context) (*VerificationReport, error) {
	drifts, err := uc.ledgerRepo.BalanceDrift(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalPartners: len(drifts),
		Drifted:       make([]BalanceDrift, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, d := range drifts {
		if !d.Difference.IsZero() {
			report.Drifted = append(report.Drifted, d)
		}
	}

	report.Consistent = len(report.Drifted) == 0

	if uc.metrics != nil {
		uc.metrics.BalanceDrift.Set(float64(len(report.Drifted)))
	}

	return report, nil
}

// Rebuilt balances make every cached read stale.
func (uc *ReconciliationUseCase) flushBalanceCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}

	partners, err := uc.partnerRepo.List(ctx, 10000, 0)
	if err != nil {
		return
	}

	for _, p := range partners {
		_ = uc.cache.Delete(ctx, balanceCacheKeyPrefix+p.ID)
	}
}

func (uc *ReconciliationUseCase) audit(ctx context.Context) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      domain.ActorFromContext(ctx),
		Action:       string(domain.AuditActionReconcile),
		ResourceType: domain.AggregateTypeLedger,
		ResourceID:   "all",
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	_ = uc.auditRepo.Create(ctx, log)
}
