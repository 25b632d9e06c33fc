package sge

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/reverseeth/silver-prices/pkg/server/sources"
)

// parseQuote scans the page's quote tables for the first row whose leading
// cell equals the contract label (exact match) and reads the following cells
// as latest/high/low plus an optional open. The label match is deliberately
// strict: the page also lists Au(T+D), mAu(T+D) and friends.
func parseQuote(page []byte, contract string) (sources.SpotQuote, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return sources.SpotQuote{}, fmt.Errorf("%w: %v", sources.ErrInvalidResponse, err)
	}

	var (
		found bool
		quote sources.SpotQuote
	)
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return true
		}
		if strings.TrimSpace(cells.Eq(0).Text()) != contract {
			return true
		}

		found = true
		quote = sources.SpotQuote{
			Latest: cellDecimal(cells.Eq(1)),
			High:   cellDecimal(cells.Eq(2)),
			Low:    cellDecimal(cells.Eq(3)),
		}
		if cells.Length() > 4 {
			if open := cellDecimal(cells.Eq(4)); open.IsPositive() {
				quote.Open = &open
			}
		}
		return false
	})

	// Zero is not a valid price: the page renders dashes or zeros for a
	// contract outside trading hours.
	if !found || !quote.Latest.IsPositive() {
		return sources.SpotQuote{}, fmt.Errorf("%w: contract %s", sources.ErrMarketClosed, contract)
	}

	return quote, nil
}

// cellDecimal parses one table cell into a decimal, tolerating surrounding
// whitespace and thousands separators. Non-numeric text parses to zero,
// which callers treat as an invalid value.
func cellDecimal(sel *goquery.Selection) decimal.Decimal {
	text := strings.TrimSpace(sel.Text())
	text = strings.ReplaceAll(text, ",", "")
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}
