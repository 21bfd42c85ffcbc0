package domain

import "errors"

var (
	// Partner errors
	ErrPartnerNotFound = errors.New("partner not found")

	// Sale errors
	ErrSaleNotFound      = errors.New("sale entry not found")
	ErrDuplicateSaleDate = errors.New("a sale entry already exists for this date")
	ErrAmountMismatch    = errors.New("amount must equal online amount plus cash amount")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSamePartner         = errors.New("cannot create transaction to same partner")
	ErrNotReceiver         = errors.New("only the receiving partner may decide this transaction")
	ErrInvalidState        = errors.New("transaction is not in a valid state for this transition")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidDomain       = errors.New("unknown transaction domain")
)
