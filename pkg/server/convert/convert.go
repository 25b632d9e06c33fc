// Package convert provides the pure unit conversion between the
// mass-denominated domestic silver quote and the ounce-denominated
// reference market.
package convert

import "github.com/shopspring/decimal"

// TroyOuncesPerKilogram is the fixed mass conversion factor: one kilogram
// is 32.1507465686 troy ounces.
var TroyOuncesPerKilogram = decimal.RequireFromString("32.1507465686")

const (
	priceScale   = 4
	percentScale = 2
)

// USDPerOunce converts a CNY-per-kilogram price into USD per troy ounce
// using a CNY-per-USD exchange rate, rounded to 4 decimal places.
// The rate must be positive; adapters validate it before it gets here.
func USDPerOunce(cnyPerKg, cnyPerUSD decimal.Decimal) decimal.Decimal {
	return cnyPerKg.Div(TroyOuncesPerKilogram.Mul(cnyPerUSD)).Round(priceScale)
}

// Premium returns the spread of the normalized local price over the
// reference price: absolute difference rounded to 4 decimal places and
// percent difference rounded to 2. The reference price must be positive.
func Premium(local, reference decimal.Decimal) (absolute, percent decimal.Decimal) {
	diff := local.Sub(reference)
	absolute = diff.Round(priceScale)
	percent = diff.Div(reference).Mul(decimal.NewFromInt(100)).Round(percentScale)
	return absolute, percent
}
