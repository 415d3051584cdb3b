package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fractional digits stored for every amount.
const MoneyPlaces = 2

// ValidAmount reports whether amount is strictly positive and representable
// without rounding in a decimal(20,2) column.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(MoneyPlaces))
}
