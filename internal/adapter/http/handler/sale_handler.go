package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/annuu1/finance-partner/internal/adapter/http/dto"
	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// SaleService defines the behavior needed by SaleHandler.
type SaleService interface {
	CreateSale(ctx context.Context, input usecase.CreateSaleInput) (*domain.SaleEntry, error)
	GetSale(ctx context.Context, id string) (*domain.SaleEntry, error)
	UpdateSale(ctx context.Context, id string, input usecase.UpdateSaleInput) (*domain.SaleEntry, error)
	DeleteSale(ctx context.Context, id string) error
	ListSalesByMonth(ctx context.Context, year int, month time.Month) ([]*domain.SaleEntry, error)
	SummarizeMonth(ctx context.Context, year int, month time.Month) (*usecase.MonthlySalesSummary, error)
}

// SaleHandler handles sale-related HTTP requests.
type SaleHandler struct {
	saleUC SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleUC SaleService) *SaleHandler {
	return &SaleHandler{saleUC: saleUC}
}

// Create records a new daily sale.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale date", err.Error())
		return
	}

	sale, err := h.saleUC.CreateSale(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create sale", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SaleFromDomain(sale))
}

// Get retrieves a sale entry by ID.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	sale, err := h.saleUC.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// Update corrects a sale entry.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	var req dto.UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale date", err.Error())
		return
	}

	sale, err := h.saleUC.UpdateSale(r.Context(), id, input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// Delete removes a sale entry.
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	if err := h.saleUC.DeleteSale(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete sale", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByMonth lists the sale entries of one calendar month.
func (h *SaleHandler) ListByMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	sales, err := h.saleUC.ListSalesByMonth(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SalesFromDomain(sales))
}

// SummarizeMonth returns one month's sales totals.
func (h *SaleHandler) SummarizeMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	summary, err := h.saleUC.SummarizeMonth(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to summarize sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthlySummaryFromUseCase(summary))
}

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year := parseIntQuery(r, "year", 0)
	month := parseIntQuery(r, "month", 0)
	if year < 1 || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid year or month", "")
		return 0, 0, false
	}

	return year, time.Month(month), true
}
