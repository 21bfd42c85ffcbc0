package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

const dateLayout = "2006-01-02"

// CreatePartnerRequest represents a request to create a partner.
type CreatePartnerRequest struct {
	Name string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePartnerRequest) ToUseCaseInput() usecase.CreatePartnerInput {
	return usecase.CreatePartnerInput{Name: r.Name}
}

// CreateSaleRequest represents a request to record a day's sale.
type CreateSaleRequest struct {
	SaleDate     string          `json:"sale_date"`
	PartnerID    *string         `json:"partner_id,omitempty"`
	OnlineAmount decimal.Decimal `json:"online_amount"`
	CashAmount   decimal.Decimal `json:"cash_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSaleRequest) ToUseCaseInput() (usecase.CreateSaleInput, error) {
	date, err := time.Parse(dateLayout, r.SaleDate)
	if err != nil {
		return usecase.CreateSaleInput{}, err
	}

	return usecase.CreateSaleInput{
		SaleDate:     date,
		PartnerID:    r.PartnerID,
		OnlineAmount: r.OnlineAmount,
		CashAmount:   r.CashAmount,
	}, nil
}

// UpdateSaleRequest represents a correction to a sale entry. Absent fields
// are left unchanged; clear_partner detaches the sale from its partner.
type UpdateSaleRequest struct {
	SaleDate     *string          `json:"sale_date,omitempty"`
	PartnerID    *string          `json:"partner_id,omitempty"`
	ClearPartner bool             `json:"clear_partner,omitempty"`
	OnlineAmount *decimal.Decimal `json:"online_amount,omitempty"`
	CashAmount   *decimal.Decimal `json:"cash_amount,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateSaleRequest) ToUseCaseInput() (usecase.UpdateSaleInput, error) {
	input := usecase.UpdateSaleInput{
		PartnerID:    r.PartnerID,
		ClearPartner: r.ClearPartner,
		OnlineAmount: r.OnlineAmount,
		CashAmount:   r.CashAmount,
	}

	if r.SaleDate != nil {
		date, err := time.Parse(dateLayout, *r.SaleDate)
		if err != nil {
			return usecase.UpdateSaleInput{}, err
		}
		input.SaleDate = &date
	}

	return input, nil
}

// CreateTransactionRequest represents a request to create a transaction.
type CreateTransactionRequest struct {
	Domain          string          `json:"domain"`
	FromPartnerID   string          `json:"from_partner_id"`
	ToPartnerID     string          `json:"to_partner_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate *string         `json:"transaction_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() (usecase.CreateTransactionInput, error) {
	input := usecase.CreateTransactionInput{
		Domain:        domain.TransactionDomain(r.Domain),
		FromPartnerID: r.FromPartnerID,
		ToPartnerID:   r.ToPartnerID,
		Amount:        r.Amount,
	}

	if r.TransactionDate != nil {
		date, err := time.Parse(dateLayout, *r.TransactionDate)
		if err != nil {
			return usecase.CreateTransactionInput{}, err
		}
		input.TransactionDate = date
	}

	return input, nil
}

// UpdateTransactionRequest represents a correction to a transaction.
type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	TransactionDate *string          `json:"transaction_date,omitempty"`
	ResetToPending  bool             `json:"reset_to_pending,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput() (usecase.UpdateTransactionInput, error) {
	input := usecase.UpdateTransactionInput{
		Amount:         r.Amount,
		ResetToPending: r.ResetToPending,
	}

	if r.TransactionDate != nil {
		date, err := time.Parse(dateLayout, *r.TransactionDate)
		if err != nil {
			return usecase.UpdateTransactionInput{}, err
		}
		input.TransactionDate = &date
	}

	return input, nil
}

// ApproveTransactionRequest identifies the approving partner.
type ApproveTransactionRequest struct {
	ActorID string `json:"actor_id"`
}

// RejectTransactionRequest identifies the rejecting partner with an optional
// reason.
type RejectTransactionRequest struct {
	ActorID string  `json:"actor_id"`
	Reason  *string `json:"reason,omitempty"`
}
