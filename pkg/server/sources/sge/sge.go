// Package sge fetches the delayed silver quote from the Shanghai Gold
// Exchange delayed-quote page.
package sge

import (
	"context"
	"net/http"
	"time"

	"github.com/reverseeth/silver-prices/pkg/config"
	"github.com/reverseeth/silver-prices/pkg/logging"
	"github.com/reverseeth/silver-prices/pkg/server/sources"
)

// Source scrapes the SGE delayed-quote page for one contract row.
type Source struct {
	url      string
	contract string
	timeout  time.Duration
	client   *http.Client
	logger   *logging.Logger
}

// New creates an SGE source from config.
func New(cfg config.SGEConfig, logger *logging.Logger) *Source {
	timeout := cfg.Timeout.ToDuration()
	logger.Info("Initializing SGE source", "url", cfg.URL, "contract", cfg.Contract)
	return &Source{
		url:      cfg.URL,
		contract: cfg.Contract,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Fetch retrieves and parses the delayed quote for the configured contract.
func (s *Source) Fetch(ctx context.Context) (sources.SpotQuote, error) {
	body, err := sources.Fetch(ctx, s.client, s.url, s.timeout)
	if err != nil {
		return sources.SpotQuote{}, err
	}

	quote, err := parseQuote(body, s.contract)
	if err != nil {
		return sources.SpotQuote{}, err
	}

	s.logger.Debug("Fetched SGE quote",
		"contract", s.contract,
		"latest", quote.Latest.String(),
		"high", quote.High.String(),
		"low", quote.Low.String())
	return quote, nil
}
