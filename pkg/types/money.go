package types

import "github.com/shopspring/decimal"

var centsPerDollar = decimal.NewFromInt(100)

// DollarsFromCents converts an integer cent amount to a two-decimal dollar value.
// Storage and arithmetic stay in cents; decimals exist only at the API edge.
func DollarsFromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerDollar).Round(2)
}

// FormatDollars renders a cent amount as a fixed two-decimal string.
func FormatDollars(cents int64) string {
	return DollarsFromCents(cents).StringFixed(2)
}
