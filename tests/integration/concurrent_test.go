package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
	"github.com/annuu1/finance-partner/tests/testutil"
)

func TestConcurrentApprovals(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	env := newTestEnv(t, testDB)
	testDB.TruncateAll(ctx)

	a := testDB.CreatePartnerWithBalance(ctx, "Asha", decimal.NewFromInt(10000))
	b := testDB.CreatePartnerWithBalance(ctx, "Bela", decimal.NewFromInt(10000))

	// Transactions in both directions so concurrent approvals lock the same
	// partner rows in opposite orders.
	const perDirection = 10

	type pending struct {
		id       string
		approver string
	}

	var txns []pending
	for i := 0; i < perDirection; i++ {
		fwd, err := env.transactionUC.CreateTransaction(ctx, usecase.CreateTransactionInput{
			Domain:        domain.DomainBusiness,
			FromPartnerID: a.ID,
			ToPartnerID:   b.ID,
			Amount:        decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("failed to create forward transaction: %v", err)
		}
		txns = append(txns, pending{id: fwd.ID, approver: b.ID})

		rev, err := env.transactionUC.CreateTransaction(ctx, usecase.CreateTransactionInput{
			Domain:        domain.DomainBusiness,
			FromPartnerID: b.ID,
			ToPartnerID:   a.ID,
			Amount:        decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("failed to create reverse transaction: %v", err)
		}
		txns = append(txns, pending{id: rev.ID, approver: a.ID})
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(txns))

	for _, txn := range txns {
		txn := txn
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.transactionUC.ApproveTransaction(
				domain.WithActor(ctx, txn.approver), txn.id, txn.approver)
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("approval failed: %v", err)
	}

	// Equal flow in both directions nets to zero.
	if got := testDB.PartnerBalance(ctx, a.ID); !got.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected partner a back at 10000, got %s", got)
	}
	if got := testDB.PartnerBalance(ctx, b.ID); !got.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected partner b back at 10000, got %s", got)
	}

	report, err := env.reconciliationUC.VerifyBalances(ctx)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !report.Consistent {
		t.Errorf("expected consistent ledger, got drift %+v", report.Drifted)
	}
}
