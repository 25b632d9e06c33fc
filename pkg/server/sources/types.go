package sources

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source name constants, used for metrics labels and error attribution.
const (
	SourceSGE   = "sge"
	SourceCOMEX = "comex"
	SourceFX    = "fx"
)

// SpotQuote is a delayed exchange quote denominated in CNY per kilogram.
// Latest is always positive; a closed market is an error, not a zero quote.
type SpotQuote struct {
	Latest decimal.Decimal  `json:"latest"`
	High   decimal.Decimal  `json:"high"`
	Low    decimal.Decimal  `json:"low"`
	Open   *decimal.Decimal `json:"open,omitempty"` // nil when the page omits a usable open
}

// ReferencePrice is the benchmark quote in USD per troy ounce.
type ReferencePrice struct {
	Price         decimal.Decimal  `json:"price"`
	Change        *decimal.Decimal `json:"change,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
	PreviousClose *decimal.Decimal `json:"previous_close,omitempty"`
	AsOf          time.Time        `json:"as_of"`
}

// ExchangeRate is the quote-currency-per-USD conversion rate.
type ExchangeRate struct {
	Rate decimal.Decimal `json:"rate"`
}
