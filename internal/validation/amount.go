package validation

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Amounts are stored as numeric(12,2); anything beyond that precision or
// range would silently round, so it is rejected up front.
var maxAmount = decimal.RequireFromString("9999999999.99")

var (
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount has more than 2 decimal places")
	ErrAmountTooLarge    = errors.New("amount exceeds representable range")
)

// Amount reports whether a monetary amount is acceptable for a ledger
// operation: strictly positive, at most two decimal places, within the
// numeric(12,2) range.
func Amount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountNotPositive
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Truncate(2)) {
		return ErrAmountPrecision
	}
	if amount.GreaterThan(maxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}
