// Package aggregator runs the three upstream fetches concurrently and
// assembles the composite premium snapshot.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/reverseeth/silver-prices/pkg/logging"
	"github.com/reverseeth/silver-prices/pkg/metrics"
	"github.com/reverseeth/silver-prices/pkg/server/convert"
	"github.com/reverseeth/silver-prices/pkg/server/sources"
)

// SpotFetcher fetches the local-market spot quote.
type SpotFetcher interface {
	Fetch(ctx context.Context) (sources.SpotQuote, error)
}

// ReferenceFetcher fetches the benchmark reference price.
type ReferenceFetcher interface {
	Fetch(ctx context.Context) (sources.ReferencePrice, error)
}

// RateFetcher fetches the currency conversion rate.
type RateFetcher interface {
	Fetch(ctx context.Context) (sources.ExchangeRate, error)
}

// Service runs one aggregation cycle per call. It holds no state between
// cycles: no retry counters, no circuit breakers, no cached upstream data.
type Service struct {
	spot      SpotFetcher
	reference ReferenceFetcher
	rate      RateFetcher
	logger    *logging.Logger
}

// New creates an aggregation service over the three sources.
func New(spot SpotFetcher, reference ReferenceFetcher, rate RateFetcher, logger *logging.Logger) *Service {
	return &Service{
		spot:      spot,
		reference: reference,
		rate:      rate,
		logger:    logger,
	}
}

// Snapshot runs all three fetches concurrently, waits for every one of them
// to settle, and assembles the composite result. A failed source never
// aborts or cancels the others; each goroutine writes only its own slots.
func (s *Service) Snapshot(ctx context.Context) *Snapshot {
	start := time.Now()

	var (
		wg sync.WaitGroup

		spot    sources.SpotQuote
		spotErr error

		ref    sources.ReferencePrice
		refErr error

		rate    sources.ExchangeRate
		rateErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		t := time.Now()
		spot, spotErr = s.spot.Fetch(ctx)
		metrics.RecordUpstreamRequest(sources.SourceSGE, sources.Outcome(spotErr), time.Since(t))
	}()
	go func() {
		defer wg.Done()
		t := time.Now()
		ref, refErr = s.reference.Fetch(ctx)
		metrics.RecordUpstreamRequest(sources.SourceCOMEX, sources.Outcome(refErr), time.Since(t))
	}()
	go func() {
		defer wg.Done()
		t := time.Now()
		rate, rateErr = s.rate.Fetch(ctx)
		metrics.RecordUpstreamRequest(sources.SourceFX, sources.Outcome(rateErr), time.Since(t))
	}()
	wg.Wait()

	snap := assemble(time.Now().UTC(), spot, spotErr, ref, refErr, rate, rateErr)

	status := "ok"
	switch {
	case !snap.OK():
		status = "failed"
	case len(snap.Errors) > 0:
		status = "partial"
	}
	metrics.RecordSnapshot(status, time.Since(start))
	if snap.Premium != nil {
		pct, _ := snap.Premium.Percent.Float64()
		metrics.RecordPremium(pct)
	}

	for _, e := range snap.Errors {
		s.logger.Warn("Source failed", "source", e.Source, "error", e.Message)
	}
	s.logger.Info("Aggregation cycle complete",
		"status", status,
		"duration_ms", time.Since(start).Milliseconds())

	return snap
}

// assemble applies the decision algorithm to the three settled outcomes.
// Pure function of its inputs; the error list keeps fx, comex, sge order.
func assemble(now time.Time, spot sources.SpotQuote, spotErr error, ref sources.ReferencePrice, refErr error, rate sources.ExchangeRate, rateErr error) *Snapshot {
	snap := &Snapshot{
		Timestamp: now,
		Errors:    make([]SourceError, 0, 3),
	}

	if rateErr != nil {
		snap.Errors = append(snap.Errors, SourceError{Source: sources.SourceFX, Message: rateErr.Error()})
	} else {
		snap.FX = &sources.ExchangeRate{Rate: rate.Rate}
	}

	if refErr != nil {
		snap.Errors = append(snap.Errors, SourceError{Source: sources.SourceCOMEX, Message: refErr.Error()})
	} else {
		r := ref
		snap.COMEX = &r
	}

	switch {
	case spotErr != nil:
		snap.Errors = append(snap.Errors, SourceError{Source: sources.SourceSGE, Message: spotErr.Error()})
	case snap.FX == nil:
		// The quote arrived but cannot be normalized this cycle.
		snap.Errors = append(snap.Errors, SourceError{Source: sources.SourceSGE, Message: ErrFXRateUnavailable.Error()})
	default:
		snap.SGE = &LocalQuote{
			PriceUSDPerOunce: convert.USDPerOunce(spot.Latest, rate.Rate),
			PriceCNYPerKg:    spot.Latest,
			HighCNYPerKg:     spot.High,
			LowCNYPerKg:      spot.Low,
			OpenCNYPerKg:     spot.Open,
		}
	}

	if snap.SGE != nil && snap.COMEX != nil {
		absolute, percent := convert.Premium(snap.SGE.PriceUSDPerOunce, snap.COMEX.Price)
		snap.Premium = &Premium{Absolute: absolute, Percent: percent}
	}

	return snap
}
