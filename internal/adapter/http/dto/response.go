package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PartnerResponse represents a partner in API responses.
type PartnerResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PartnerFromDomain converts a domain partner to a response.
func PartnerFromDomain(p *domain.Partner) *PartnerResponse {
	return &PartnerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Balance:   p.Balance,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// PartnersFromDomain converts domain partners to responses.
func PartnersFromDomain(partners []*domain.Partner) []*PartnerResponse {
	result := make([]*PartnerResponse, len(partners))
	for i, p := range partners {
		result[i] = PartnerFromDomain(p)
	}

	return result
}

// BalanceResponse represents a partner's aggregate balance.
type BalanceResponse struct {
	PartnerID string          `json:"partner_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// PairwiseBalanceResponse represents the net balance between two partners.
type PairwiseBalanceResponse struct {
	PartnerA string          `json:"partner_a"`
	PartnerB string          `json:"partner_b"`
	Balance  decimal.Decimal `json:"balance"`
}

// SaleResponse represents a sale entry in API responses.
type SaleResponse struct {
	ID           string          `json:"id"`
	SaleDate     string          `json:"sale_date"`
	PartnerID    *string         `json:"partner_id,omitempty"`
	OnlineAmount decimal.Decimal `json:"online_amount"`
	CashAmount   decimal.Decimal `json:"cash_amount"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SaleFromDomain converts a domain sale entry to a response.
func SaleFromDomain(s *domain.SaleEntry) *SaleResponse {
	return &SaleResponse{
		ID:           s.ID,
		SaleDate:     s.SaleDate.Format(dateLayout),
		PartnerID:    s.PartnerID,
		OnlineAmount: s.OnlineAmount,
		CashAmount:   s.CashAmount,
		Amount:       s.Amount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SalesFromDomain converts domain sale entries to responses.
func SalesFromDomain(sales []*domain.SaleEntry) []*SaleResponse {
	result := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		result[i] = SaleFromDomain(s)
	}

	return result
}

// MonthlySalesSummaryResponse represents one month's sales totals.
type MonthlySalesSummaryResponse struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalOnline decimal.Decimal `json:"total_online"`
	TotalCash   decimal.Decimal `json:"total_cash"`
}

// MonthlySummaryFromUseCase converts a usecase summary to a response.
func MonthlySummaryFromUseCase(s *usecase.MonthlySalesSummary) *MonthlySalesSummaryResponse {
	return &MonthlySalesSummaryResponse{
		Year:        s.Year,
		Month:       int(s.Month),
		TotalAmount: s.TotalAmount,
		TotalOnline: s.TotalOnline,
		TotalCash:   s.TotalCash,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID              string          `json:"id"`
	Domain          string          `json:"domain"`
	FromPartnerID   string          `json:"from_partner_id"`
	ToPartnerID     string          `json:"to_partner_id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	TransactionDate string          `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		Domain:          string(t.Domain),
		FromPartnerID:   t.FromPartnerID,
		ToPartnerID:     t.ToPartnerID,
		Amount:          t.Amount,
		Status:          string(t.Status),
		ApprovedBy:      t.ApprovedBy,
		ApprovedAt:      t.ApprovedAt,
		RejectionReason: t.RejectionReason,
		TransactionDate: t.TransactionDate.Format(dateLayout),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}

	return result
}

// BalanceDriftResponse represents one partner's drift in API responses.
type BalanceDriftResponse struct {
	PartnerID       string          `json:"partner_id"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	DerivedBalance  decimal.Decimal `json:"derived_balance"`
	Difference      decimal.Decimal `json:"difference"`
}

// VerificationReportResponse represents a drift check in API responses.
type VerificationReportResponse struct {
	TotalPartners int                     `json:"total_partners"`
	Consistent    bool                    `json:"consistent"`
	Drifted       []*BalanceDriftResponse `json:"drifted"`
	CheckedAt     time.Time               `json:"checked_at"`
}

// VerificationReportFromUseCase converts a usecase report to a response.
func VerificationReportFromUseCase(r *usecase.VerificationReport) *VerificationReportResponse {
	drifted := make([]*BalanceDriftResponse, len(r.Drifted))
	for i, d := range r.Drifted {
		drifted[i] = &BalanceDriftResponse{
			PartnerID:       d.PartnerID,
			RecordedBalance: d.RecordedBalance,
			DerivedBalance:  d.DerivedBalance,
			Difference:      d.Difference,
		}
	}

	return &VerificationReportResponse{
		TotalPartners: r.TotalPartners,
		Consistent:    r.Consistent,
		Drifted:       drifted,
		CheckedAt:     r.CheckedAt,
	}
}
