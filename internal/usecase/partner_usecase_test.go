package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
	"github.com/annuu1/finance-partner/internal/usecase/mocks"
)

func TestPartnerUseCase_CreatePartner(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreatePartnerInput
		expectError error
	}{
		{
			name:  "valid name",
			input: usecase.CreatePartnerInput{Name: "Asha"},
		},
		{
			name:        "empty name",
			input:       usecase.CreatePartnerInput{Name: ""},
			expectError: domain.ErrInvalidPartnerName,
		},
		{
			name:        "whitespace name",
			input:       usecase.CreatePartnerInput{Name: "   "},
			expectError: domain.ErrInvalidPartnerName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewPartnerUseCase(
				mocks.NewMockPartnerRepository(),
				mocks.NewMockPairwiseRepository(),
				mocks.NewMockIDGenerator(),
				nil,
			)

			partner, err := uc.CreatePartner(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !partner.Balance.IsZero() {
				t.Errorf("expected zero starting balance, got %s", partner.Balance)
			}
		})
	}
}

func TestPartnerUseCase_GetBalanceCacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)

	partnerRepo := mocks.NewMockPartnerRepository()
	partnerRepo.Add(&domain.Partner{ID: "p1", Name: "Asha", Balance: decimal.NewFromInt(750)})

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "balance:p1").Return("", redis.Nil)
	cache.EXPECT().Set(gomock.Any(), "balance:p1", "750", usecase.BalanceCacheTTL).Return(nil)

	uc := usecase.NewPartnerUseCase(partnerRepo, mocks.NewMockPairwiseRepository(), mocks.NewMockIDGenerator(), cache)

	balance, err := uc.GetBalance(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(750)) {
		t.Errorf("expected 750, got %s", balance)
	}
}

func TestPartnerUseCase_GetBalanceCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)

	partnerRepo := mocks.NewMockPartnerRepository()
	partnerRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Partner, error) {
		t.Fatal("repository must not be hit on a cache hit")
		return nil, nil
	}

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "balance:p1").Return("123.45", nil)

	uc := usecase.NewPartnerUseCase(partnerRepo, mocks.NewMockPairwiseRepository(), mocks.NewMockIDGenerator(), cache)

	balance, err := uc.GetBalance(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("123.45")) {
		t.Errorf("expected 123.45, got %s", balance)
	}
}

func TestPartnerUseCase_GetPairwiseBalance(t *testing.T) {
	partnerRepo := mocks.NewMockPartnerRepository()
	pairRepo := mocks.NewMockPairwiseRepository()

	uc := usecase.NewPartnerUseCase(partnerRepo, pairRepo, mocks.NewMockIDGenerator(), nil)

	// No approved transactions yet: zero, not an error.
	balance, err := uc.GetPairwiseBalance(context.Background(), "p1", "p2")
	if err != nil {
		t.Fatalf("get pairwise balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("expected zero, got %s", balance)
	}
}

func TestPartnerUseCase_GetPairwiseBalanceSamePartner(t *testing.T) {
	uc := usecase.NewPartnerUseCase(
		mocks.NewMockPartnerRepository(),
		mocks.NewMockPairwiseRepository(),
		mocks.NewMockIDGenerator(),
		nil,
	)

	_, err := uc.GetPairwiseBalance(context.Background(), "p1", "p1")
	if !errors.Is(err, domain.ErrSamePartner) {
		t.Fatalf("expected ErrSamePartner, got %v", err)
	}
}

func TestPartnerUseCase_GetPairwiseBalanceOrderInsensitive(t *testing.T) {
	pairRepo := mocks.NewMockPairwiseRepository()
	uc := usecase.NewPartnerUseCase(mocks.NewMockPartnerRepository(), pairRepo, mocks.NewMockIDGenerator(), nil)

	ctx := context.Background()
	if err := pairRepo.ApplyDelta(ctx, nil, "p1", "p2", decimal.NewFromInt(-40), time.Now().UTC()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	forward, err := uc.GetPairwiseBalance(ctx, "p1", "p2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	reverse, err := uc.GetPairwiseBalance(ctx, "p2", "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if !forward.Equal(reverse) {
		t.Errorf("pairwise balance depends on argument order: %s vs %s", forward, reverse)
	}
	if !forward.Equal(decimal.NewFromInt(-40)) {
		t.Errorf("expected -40, got %s", forward)
	}
}
