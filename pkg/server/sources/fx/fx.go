// Package fx fetches the CNY-per-USD conversion rate from a Frankfurter
// style JSON feed.
package fx

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

// Source fetches the exchange rate for one configured quote currency.
type Source struct {
	url      string
	currency string
	timeout  time.Duration
	client   *http.Client
	logger   *logging.Logger
}

type ratesResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// New creates an FX source from config.
func New(cfg config.FXConfig, logger *logging.Logger) *Source {
	timeout := cfg.Timeout.ToDuration()
	logger.Info("Initializing FX source", "url", cfg.URL, "currency", cfg.Currency)
	return &Source{
		url:      cfg.URL,
		currency: cfg.Currency,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Fetch retrieves the configured currency's rate from the feed.
func (s *Source) Fetch(ctx context.Context) (sources.ExchangeRate, error) {
	body, err := sources.Fetch(ctx, s.client, s.url, s.timeout)
	if err != nil {
		return sources.ExchangeRate{}, err
	}

	var data ratesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return sources.ExchangeRate{}, fmt.Errorf("%w: %v", sources.ErrInvalidResponse, err)
	}

	rate, ok := data.Rates[s.currency]
	if !ok {
		return sources.ExchangeRate{}, fmt.Errorf("%w: %s", sources.ErrRateNotFound, s.currency)
	}
	if !rate.IsPositive() {
		return sources.ExchangeRate{}, fmt.Errorf("%w: %s=%s", sources.ErrInvalidRate, s.currency, rate.String())
	}

	s.logger.Debug("Fetched FX rate", "currency", s.currency, "rate", rate.String())
	return sources.ExchangeRate{Rate: rate}, nil
}
