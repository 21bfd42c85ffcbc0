package handler

import (
	"context"
	"net/http"

	"github.com/annuu1/finance-partner/internal/adapter/http/dto"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	ReconcileAllBalances(ctx context.Context) error
	VerifyBalances(ctx context.Context) (*usecase.VerificationReport, error)
}

// LedgerHandler handles ledger-wide reconciliation requests.
type LedgerHandler struct {
	reconciliationUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliationUC LedgerService) *LedgerHandler {
	return &LedgerHandler{reconciliationUC: reconciliationUC}
}

// Reconcile rebuilds every balance from the full event history.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if err := h.reconciliationUC.ReconcileAllBalances(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "reconciliation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

// Verify reports balance drift without repairing anything.
func (h *LedgerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.VerifyBalances(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "verification failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationReportFromUseCase(report))
}
