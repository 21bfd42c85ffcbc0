package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
	"github.com/annuu1/finance-partner/internal/usecase/mocks"
)

type transactionFixture struct {
	uc          *usecase.TransactionUseCase
	partnerRepo *mocks.MockPartnerRepository
	txnRepo     *mocks.MockTransactionRepository
	pairRepo    *mocks.MockPairwiseRepository
	outboxRepo  *mocks.MockOutboxRepository
}

func newTransactionFixture() *transactionFixture {
	partnerRepo := mocks.NewMockPartnerRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	pairRepo := mocks.NewMockPairwiseRepository()
	outboxRepo := mocks.NewMockOutboxRepository()

	partnerRepo.Add(&domain.Partner{ID: "p1", Name: "Asha", Balance: decimal.NewFromInt(1000)})
	partnerRepo.Add(&domain.Partner{ID: "p2", Name: "Ravi", Balance: decimal.NewFromInt(500)})

	sinks := map[domain.TransactionDomain]usecase.BalanceSink{
		domain.DomainBusiness: usecase.NewAggregateBalanceSink(partnerRepo),
		domain.DomainPersonal: usecase.NewPairwiseBalanceSink(pairRepo),
	}

	uc := usecase.NewTransactionUseCase(
		mocks.NewMockTransactionManager(),
		txnRepo,
		partnerRepo,
		sinks,
		outboxRepo,
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		nil,
		nil,
	)

	return &transactionFixture{
		uc:          uc,
		partnerRepo: partnerRepo,
		txnRepo:     txnRepo,
		pairRepo:    pairRepo,
		outboxRepo:  outboxRepo,
	}
}

func (f *transactionFixture) pendingTransaction(dom domain.TransactionDomain, amount int64) *domain.Transaction {
	txn := &domain.Transaction{
		ID:              "txn-1",
		Domain:          dom,
		FromPartnerID:   "p1",
		ToPartnerID:     "p2",
		Amount:          decimal.NewFromInt(amount),
		Status:          domain.StatusPending,
		TransactionDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	f.txnRepo.Add(txn)

	return txn
}

func TestTransactionUseCase_CreateTransaction(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateTransactionInput
		expectError error
	}{
		{
			name: "successful business transaction",
			input: usecase.CreateTransactionInput{
				Domain:        domain.DomainBusiness,
				FromPartnerID: "p1",
				ToPartnerID:   "p2",
				Amount:        decimal.NewFromInt(100),
			},
		},
		{
			name: "reject same partner",
			input: usecase.CreateTransactionInput{
				Domain:        domain.DomainPersonal,
				FromPartnerID: "p1",
				ToPartnerID:   "p1",
				Amount:        decimal.NewFromInt(100),
			},
			expectError: domain.ErrSamePartner,
		},
		{
			name: "reject zero amount",
			input: usecase.CreateTransactionInput{
				Domain:        domain.DomainBusiness,
				FromPartnerID: "p1",
				ToPartnerID:   "p2",
				Amount:        decimal.Zero,
			},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name: "reject unknown partner",
			input: usecase.CreateTransactionInput{
				Domain:        domain.DomainBusiness,
				FromPartnerID: "p1",
				ToPartnerID:   "ghost",
				Amount:        decimal.NewFromInt(50),
			},
			expectError: domain.ErrPartnerNotFound,
		},
		{
			name: "reject unknown domain",
			input: usecase.CreateTransactionInput{
				Domain:        "corporate",
				FromPartnerID: "p1",
				ToPartnerID:   "p2",
				Amount:        decimal.NewFromInt(50),
			},
			expectError: domain.ErrInvalidDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture()

			txn, err := f.uc.CreateTransaction(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if txn.Status != domain.StatusPending {
				t.Errorf("expected pending status, got %s", txn.Status)
			}
			// Pending rows never move balances.
			if !f.partnerRepo.Balance("p1").Equal(decimal.NewFromInt(1000)) {
				t.Errorf("sender balance moved on create: %s", f.partnerRepo.Balance("p1"))
			}
		})
	}
}

func TestTransactionUseCase_ApproveBusinessTransaction(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	txn, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p2")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if txn.Status != domain.StatusApproved {
		t.Errorf("expected approved, got %s", txn.Status)
	}
	if txn.ApprovedBy == nil || *txn.ApprovedBy != "p2" {
		t.Errorf("expected approved_by p2, got %v", txn.ApprovedBy)
	}
	if txn.ApprovedAt == nil {
		t.Error("expected approved_at to be set")
	}

	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected sender balance 800, got %s", got)
	}
	if got := f.partnerRepo.Balance("p2"); !got.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected receiver balance 700, got %s", got)
	}
}

func TestTransactionUseCase_ApproveOnlyByReceiver(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	_, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p1")
	if !errors.Is(err, domain.ErrNotReceiver) {
		t.Fatalf("expected ErrNotReceiver, got %v", err)
	}

	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance moved on failed approve: %s", got)
	}
}

func TestTransactionUseCase_DoubleApproveFails(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	if _, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p2"); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}

	_, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p2")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	// The second attempt must not double-apply.
	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected sender balance 800, got %s", got)
	}
}

func TestTransactionUseCase_ApprovePersonalTransaction(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainPersonal, 300)

	if _, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p2"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Aggregate balances stay untouched in the personal domain.
	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("aggregate balance moved: %s", got)
	}

	// p1 < p2 and p1 is the sender, so the pair balance goes down.
	if got := f.pairRepo.Balance("p1", "p2"); !got.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected pair balance -300, got %s", got)
	}
}

func TestTransactionUseCase_RejectTransaction(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	reason := "wrong amount"
	txn, err := f.uc.RejectTransaction(context.Background(), "txn-1", "p2", &reason)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if txn.Status != domain.StatusRejected {
		t.Errorf("expected rejected, got %s", txn.Status)
	}
	if txn.RejectionReason == nil || *txn.RejectionReason != reason {
		t.Errorf("expected rejection reason %q, got %v", reason, txn.RejectionReason)
	}

	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance moved on reject: %s", got)
	}
}

func TestTransactionUseCase_RejectedCannotBeReopened(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	if _, err := f.uc.RejectTransaction(context.Background(), "txn-1", "p2", nil); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	_, err := f.uc.UpdateTransaction(context.Background(), "txn-1", usecase.UpdateTransactionInput{
		ResetToPending: true,
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestTransactionUseCase_ResetToPendingReversesBalances(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	if _, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p2"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	txn, err := f.uc.UpdateTransaction(context.Background(), "txn-1", usecase.UpdateTransactionInput{
		ResetToPending: true,
	})
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if txn.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", txn.Status)
	}
	if txn.ApprovedBy != nil || txn.ApprovedAt != nil {
		t.Error("expected approval metadata cleared")
	}

	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected sender balance restored to 1000, got %s", got)
	}
	if got := f.partnerRepo.Balance("p2"); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected receiver balance restored to 500, got %s", got)
	}
}

func TestTransactionUseCase_UpdateApprovedAmount(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	if _, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p2"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	newAmount := decimal.NewFromInt(50)
	txn, err := f.uc.UpdateTransaction(context.Background(), "txn-1", usecase.UpdateTransactionInput{
		Amount: &newAmount,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if txn.Status != domain.StatusApproved {
		t.Errorf("expected still approved, got %s", txn.Status)
	}

	// 1000 + 200 back - 50 out.
	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(950)) {
		t.Errorf("expected sender balance 950, got %s", got)
	}
	if got := f.partnerRepo.Balance("p2"); !got.Equal(decimal.NewFromInt(550)) {
		t.Errorf("expected receiver balance 550, got %s", got)
	}
}

func TestTransactionUseCase_UpdatePendingAmountLeavesBalances(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainBusiness, 200)

	newAmount := decimal.NewFromInt(75)
	if _, err := f.uc.UpdateTransaction(context.Background(), "txn-1", usecase.UpdateTransactionInput{
		Amount: &newAmount,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if got := f.partnerRepo.Balance("p1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance moved for pending update: %s", got)
	}
}

func TestTransactionUseCase_DeleteApprovedReverses(t *testing.T) {
	f := newTransactionFixture()
	f.pendingTransaction(domain.DomainPersonal, 120)

	if _, err := f.uc.ApproveTransaction(context.Background(), "txn-1", "p2"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := f.uc.DeleteTransaction(context.Background(), "txn-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if got := f.pairRepo.Balance("p1", "p2"); !got.IsZero() {
		t.Errorf("expected pair balance back to zero, got %s", got)
	}

	if _, err := f.uc.GetTransaction(context.Background(), "txn-1"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionUseCase_OutboxEvents(t *testing.T) {
	f := newTransactionFixture()

	txn, err := f.uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		Domain:        domain.DomainBusiness,
		FromPartnerID: "p1",
		ToPartnerID:   "p2",
		Amount:        decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.uc.ApproveTransaction(context.Background(), txn.ID, "p2"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	types := f.outboxRepo.EventTypes()
	want := []string{domain.EventTypeTransactionCreated, domain.EventTypeTransactionApproved}
	if len(types) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(types))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}
