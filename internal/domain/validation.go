package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidPartnerName = errors.New("invalid partner name")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrInvalidIDFormat    = errors.New("invalid ID format")
)

// Validation constants
const (
	MaxPartnerNameLength = 255
	MinPartnerNameLength = 1
	MaxAmount            = "1000000000" // 1 billion
)

// ValidatePartnerName validates a partner's display name.
func ValidatePartnerName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinPartnerNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidPartnerName)
	}

	if len(name) > MaxPartnerNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidPartnerName, MaxPartnerNameLength)
	}

	return nil
}

// ValidateTransactionAmount validates a transaction amount.
func ValidateTransactionAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateSaleAmounts validates the online/cash components of a sale entry.
func ValidateSaleAmounts(online, cash decimal.Decimal) error {
	if online.IsNegative() || cash.IsNegative() {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if online.Add(cash).GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
