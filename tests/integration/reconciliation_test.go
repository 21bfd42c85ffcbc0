package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/adapter/http/dto"
	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
	"github.com/annuu1/finance-partner/tests/testutil"
)

func TestReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	env := newTestEnv(t, testDB)

	seedHistory := func(t *testing.T) (sender, receiver *domain.Partner) {
		t.Helper()

		sender = testDB.CreatePartner(ctx, "Asha")
		receiver = testDB.CreatePartner(ctx, "Bela")

		if _, err := env.saleUC.CreateSale(ctx, mustSaleInput(t, "2025-03-10", &sender.ID, 600, 400)); err != nil {
			t.Fatalf("failed to seed sale: %v", err)
		}

		txn, err := env.transactionUC.CreateTransaction(ctx, usecase.CreateTransactionInput{
			Domain:        domain.DomainBusiness,
			FromPartnerID: sender.ID,
			ToPartnerID:   receiver.ID,
			Amount:        decimal.NewFromInt(250),
		})
		if err != nil {
			t.Fatalf("failed to seed transaction: %v", err)
		}

		if _, err := env.transactionUC.ApproveTransaction(
			domain.WithActor(ctx, receiver.ID), txn.ID, receiver.ID,
		); err != nil {
			t.Fatalf("failed to approve seeded transaction: %v", err)
		}

		return sender, receiver
	}

	t.Run("verify reports injected drift", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sender, _ := seedHistory(t)

		// Corrupt the recorded balance behind the engine's back.
		if _, err := testDB.Pool.Exec(ctx,
			"UPDATE partners SET balance = balance + 99 WHERE id = $1", sender.ID); err != nil {
			t.Fatalf("failed to inject drift: %v", err)
		}

		r := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/verify", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var report dto.VerificationReportResponse
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("failed to parse report: %v", err)
		}

		if report.Consistent {
			t.Fatal("expected drift to be reported")
		}
		if len(report.Drifted) != 1 || report.Drifted[0].PartnerID != sender.ID {
			t.Fatalf("expected drift on sender, got %+v", report.Drifted)
		}
	})

	t.Run("reconcile repairs balances from history", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sender, receiver := seedHistory(t)

		if _, err := testDB.Pool.Exec(ctx,
			"UPDATE partners SET balance = 0"); err != nil {
			t.Fatalf("failed to wipe balances: %v", err)
		}

		r := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/reconcile", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		// Sale of 1000 minus approved transfer of 250.
		if got := testDB.PartnerBalance(ctx, sender.ID); !got.Equal(decimal.NewFromInt(750)) {
			t.Errorf("expected sender 750, got %s", got)
		}
		if got := testDB.PartnerBalance(ctx, receiver.ID); !got.Equal(decimal.NewFromInt(250)) {
			t.Errorf("expected receiver 250, got %s", got)
		}

		report, err := env.reconciliationUC.VerifyBalances(ctx)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !report.Consistent {
			t.Fatalf("expected consistency after reconcile, got drift %+v", report.Drifted)
		}
	})

	t.Run("reconcile rebuilds pairwise balances", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		a := testDB.CreatePartner(ctx, "Asha")
		b := testDB.CreatePartner(ctx, "Bela")

		txn, err := env.transactionUC.CreateTransaction(ctx, usecase.CreateTransactionInput{
			Domain:        domain.DomainPersonal,
			FromPartnerID: a.ID,
			ToPartnerID:   b.ID,
			Amount:        decimal.NewFromInt(120),
		})
		if err != nil {
			t.Fatalf("failed to create personal transaction: %v", err)
		}
		if _, err := env.transactionUC.ApproveTransaction(
			domain.WithActor(ctx, b.ID), txn.ID, b.ID,
		); err != nil {
			t.Fatalf("failed to approve: %v", err)
		}

		before, err := env.pairwiseRepo.Get(ctx, a.ID, b.ID)
		if err != nil || before == nil {
			t.Fatalf("expected pairwise row, got %v, %v", before, err)
		}

		if _, err := testDB.Pool.Exec(ctx, "DELETE FROM pairwise_balances"); err != nil {
			t.Fatalf("failed to wipe pairwise rows: %v", err)
		}

		if err := env.reconciliationUC.ReconcileAllBalances(ctx); err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		after, err := env.pairwiseRepo.Get(ctx, a.ID, b.ID)
		if err != nil || after == nil {
			t.Fatalf("expected rebuilt pairwise row, got %v, %v", after, err)
		}
		if !after.BalanceAmount.Equal(before.BalanceAmount) {
			t.Errorf("expected rebuilt balance %s, got %s", before.BalanceAmount, after.BalanceAmount)
		}
	})
}
