// Package aggregator runs the three upstream fetches concurrently and
// assembles the composite premium snapshot.
package aggregator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/reverseeth/silver-prices/pkg/server/sources"
)

// LocalQuote is the SGE quote normalized into the reference unit system.
// The raw CNY/kg figures travel alongside the converted price.
type LocalQuote struct {
	PriceUSDPerOunce decimal.Decimal  `json:"price_usd_per_ounce"`
	PriceCNYPerKg    decimal.Decimal  `json:"price_cny_per_kg"`
	HighCNYPerKg     decimal.Decimal  `json:"high_cny_per_kg"`
	LowCNYPerKg      decimal.Decimal  `json:"low_cny_per_kg"`
	OpenCNYPerKg     *decimal.Decimal `json:"open_cny_per_kg,omitempty"`
}

// Premium is the spread of the normalized SGE price over COMEX.
type Premium struct {
	Absolute decimal.Decimal `json:"absolute"`
	Percent  decimal.Decimal `json:"percent"`
}

// SourceError attributes one upstream failure inside a snapshot.
type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Snapshot is the composite result of one aggregation cycle. Sections are
// nil when their upstream failed or could not be used this cycle.
type Snapshot struct {
	Timestamp time.Time               `json:"timestamp"`
	SGE       *LocalQuote             `json:"sge,omitempty"`
	COMEX     *sources.ReferencePrice `json:"comex,omitempty"`
	FX        *sources.ExchangeRate   `json:"fx,omitempty"`
	Premium   *Premium                `json:"premium,omitempty"`
	Errors    []SourceError           `json:"errors"`
}

// OK reports whether the cycle produced any usable market data. False
// means total failure across all upstreams.
func (s *Snapshot) OK() bool {
	return s.SGE != nil || s.COMEX != nil
}
