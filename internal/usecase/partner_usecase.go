package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
)

// PartnerUseCase handles partner records and balance reads.
type PartnerUseCase struct {
	partnerRepo PartnerRepository
	pairRepo    PairwiseRepository
	idGen       IDGenerator
	cache       Cache
}

// NewPartnerUseCase creates a new PartnerUseCase. cache may be nil.
func NewPartnerUseCase(partnerRepo PartnerRepository, pairRepo PairwiseRepository, idGen IDGenerator, cache Cache) *PartnerUseCase {
	return &PartnerUseCase{
		partnerRepo: partnerRepo,
		pairRepo:    pairRepo,
		idGen:       idGen,
		cache:       cache,
	}
}

// CreatePartnerInput represents input for creating a partner.
type CreatePartnerInput struct {
	Name string
}

// CreatePartner creates a new partner with a zero balance.
func (uc *PartnerUseCase) CreatePartner(ctx context.Context, input CreatePartnerInput) (*domain.Partner, error) {
	if err := domain.ValidatePartnerName(input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	partner := &domain.Partner{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.partnerRepo.Create(ctx, partner); err != nil {
		return nil, err
	}

	return partner, nil
}

// GetPartner retrieves a partner by ID.
func (uc *PartnerUseCase) GetPartner(ctx context.Context, id string) (*domain.Partner, error) {
	return uc.partnerRepo.GetByID(ctx, id)
}

// ListPartnersInput represents input for listing partners.
type ListPartnersInput struct {
	Limit  int
	Offset int
}

// ListPartners lists partners with pagination.
func (uc *PartnerUseCase) ListPartners(ctx context.Context, input ListPartnersInput) ([]*domain.Partner, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.partnerRepo.List(ctx, limit, offset)
}

// GetBalance returns a partner's aggregate balance, served from cache when
// fresh. Mutating usecases invalidate the key.
func (uc *PartnerUseCase) GetBalance(ctx context.Context, partnerID string) (decimal.Decimal, error) {
	key := balanceCacheKeyPrefix + partnerID

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil {
			if balance, perr := decimal.NewFromString(cached); perr == nil {
				return balance, nil
			}
		}
	}

	partner, err := uc.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, partner.Balance.String(), BalanceCacheTTL)
	}

	return partner.Balance, nil
}

// GetPairwiseBalance returns the personal-domain net balance between two
// partners. A pair with no approved transactions yet has a zero balance.
func (uc *PartnerUseCase) GetPairwiseBalance(ctx context.Context, partnerA, partnerB string) (decimal.Decimal, error) {
	if partnerA == partnerB {
		return decimal.Zero, domain.ErrSamePartner
	}

	lo, hi := domain.CanonicalPair(partnerA, partnerB)
	key := pairwiseCacheKeyPrefix + lo + ":" + hi

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil {
			if balance, perr := decimal.NewFromString(cached); perr == nil {
				return balance, nil
			}
		}
	}

	pair, err := uc.pairRepo.Get(ctx, lo, hi)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	if pair != nil {
		balance = pair.BalanceAmount
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, balance.String(), BalanceCacheTTL)
	}

	return balance, nil
}
