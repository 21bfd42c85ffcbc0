package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/annuu1/finance-partner/internal/adapter/http/dto"
	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ApproveTransaction(ctx context.Context, id, actorID string) (*domain.Transaction, error)
	RejectTransaction(ctx context.Context, id, actorID string, reason *string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Create records a new pending transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction date", err.Error())
		return
	}

	txn, err := h.transactionUC.CreateTransaction(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.transactionUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Approve transitions a pending transaction to approved.
func (h *TransactionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.ApproveTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.ActorID == "" {
		writeError(w, http.StatusBadRequest, "missing actor_id", "")
		return
	}

	ctx := domain.WithActor(r.Context(), req.ActorID)

	txn, err := h.transactionUC.ApproveTransaction(ctx, id, req.ActorID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Reject transitions a pending transaction to rejected.
func (h *TransactionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.RejectTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.ActorID == "" {
		writeError(w, http.StatusBadRequest, "missing actor_id", "")
		return
	}

	ctx := domain.WithActor(r.Context(), req.ActorID)

	txn, err := h.transactionUC.RejectTransaction(ctx, id, req.ActorID, req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reject transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Update corrects a transaction, optionally reopening an approved one.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction date", err.Error())
		return
	}

	txn, err := h.transactionUC.UpdateTransaction(r.Context(), id, input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	if err := h.transactionUC.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete transaction", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByPartner lists transactions touching a partner in one domain.
func (h *TransactionHandler) ListByPartner(w http.ResponseWriter, r *http.Request) {
	partnerID := chi.URLParam(r, "id")
	if partnerID == "" {
		writeError(w, http.StatusBadRequest, "missing partner ID", "")
		return
	}

	dom := domain.TransactionDomain(r.URL.Query().Get("domain"))
	if dom == "" {
		dom = domain.DomainBusiness
	}

	var status *domain.TransactionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.TransactionStatus(s)
		status = &st
	}

	txns, err := h.transactionUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		PartnerID: partnerID,
		Domain:    dom,
		Status:    status,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
