package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/adapter/http/dto"
	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// PartnerService defines the behavior needed by PartnerHandler.
type PartnerService interface {
	CreatePartner(ctx context.Context, input usecase.CreatePartnerInput) (*domain.Partner, error)
	GetPartner(ctx context.Context, id string) (*domain.Partner, error)
	ListPartners(ctx context.Context, input usecase.ListPartnersInput) ([]*domain.Partner, error)
	GetBalance(ctx context.Context, partnerID string) (decimal.Decimal, error)
	GetPairwiseBalance(ctx context.Context, partnerA, partnerB string) (decimal.Decimal, error)
}

// PartnerHandler handles partner-related HTTP requests.
type PartnerHandler struct {
	partnerUC PartnerService
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(partnerUC PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerUC: partnerUC}
}

// Create creates a new partner.
func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	partner, err := h.partnerUC.CreatePartner(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create partner", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PartnerFromDomain(partner))
}

// Get retrieves a partner by ID.
func (h *PartnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing partner ID", "")
		return
	}

	partner, err := h.partnerUC.GetPartner(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get partner", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PartnerFromDomain(partner))
}

// List lists partners with pagination.
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partnerUC.ListPartners(r.Context(), usecase.ListPartnersInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list partners", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PartnersFromDomain(partners))
}

// GetBalance returns a partner's aggregate balance.
func (h *PartnerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing partner ID", "")
		return
	}

	balance, err := h.partnerUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		PartnerID: id,
		Balance:   balance,
	})
}

// GetPairwiseBalance returns the personal-domain net balance between two
// partners.
func (h *PartnerHandler) GetPairwiseBalance(w http.ResponseWriter, r *http.Request) {
	partnerA := chi.URLParam(r, "id")
	partnerB := chi.URLParam(r, "otherID")
	if partnerA == "" || partnerB == "" {
		writeError(w, http.StatusBadRequest, "missing partner ID", "")
		return
	}

	balance, err := h.partnerUC.GetPairwiseBalance(r.Context(), partnerA, partnerB)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get pairwise balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PairwiseBalanceResponse{
		PartnerA: partnerA,
		PartnerB: partnerB,
		Balance:  balance,
	})
}
