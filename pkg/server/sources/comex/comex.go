// Package comex fetches the COMEX silver benchmark from a JSON quote feed.
package comex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reverseeth/silver-prices/pkg/config"
	"github.com/reverseeth/silver-prices/pkg/logging"
	"github.com/reverseeth/silver-prices/pkg/server/sources"
)

// Source fetches the reference price from the configured quote feed.
type Source struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *logging.Logger
}

// quoteDocument mirrors the feed's JSON layout. Optional fields are pointers
// so absence survives decoding instead of turning into zeros.
type quoteDocument struct {
	Items []quoteItem `json:"items"`
}

type quoteItem struct {
	Price         *decimal.Decimal `json:"price"`
	Change        *decimal.Decimal `json:"change"`
	ChangePercent *decimal.Decimal `json:"change_percent"`
	PreviousClose *decimal.Decimal `json:"prev_close"`
	Timestamp     int64            `json:"timestamp"`
}

// New creates a COMEX source from config.
func New(cfg config.COMEXConfig, logger *logging.Logger) *Source {
	timeout := cfg.Timeout.ToDuration()
	logger.Info("Initializing COMEX source", "url", cfg.URL)
	return &Source{
		url:     cfg.URL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Fetch retrieves the first quote item from the feed.
func (s *Source) Fetch(ctx context.Context) (sources.ReferencePrice, error) {
	body, err := sources.Fetch(ctx, s.client, s.url, s.timeout)
	if err != nil {
		return sources.ReferencePrice{}, err
	}

	var doc quoteDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return sources.ReferencePrice{}, fmt.Errorf("%w: %v", sources.ErrInvalidResponse, err)
	}

	if len(doc.Items) == 0 {
		return sources.ReferencePrice{}, fmt.Errorf("%w: empty items", sources.ErrPriceNotFound)
	}

	item := doc.Items[0]
	if item.Price == nil || !item.Price.IsPositive() {
		return sources.ReferencePrice{}, fmt.Errorf("%w: missing or non-positive price", sources.ErrPriceNotFound)
	}

	ref := sources.ReferencePrice{
		Price:         *item.Price,
		Change:        item.Change,
		ChangePercent: item.ChangePercent,
		PreviousClose: item.PreviousClose,
		AsOf:          parseEpochMaybeMillis(item.Timestamp, time.Now().UTC()),
	}

	s.logger.Debug("Fetched COMEX quote", "price", ref.Price.String())
	return ref, nil
}

// parseEpochMaybeMillis interprets the feed's timestamp, which some
// deployments emit in seconds and others in milliseconds.
func parseEpochMaybeMillis(v int64, fallback time.Time) time.Time {
	if v <= 0 {
		return fallback
	}
	if v > 1_000_000_000_000 { // ms
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}
