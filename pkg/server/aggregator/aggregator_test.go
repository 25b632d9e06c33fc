// Package aggregator runs the three upstream fetches concurrently and
// assembles the composite premium snapshot.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverseeth/silver-prices/pkg/logging"
	"github.com/reverseeth/silver-prices/pkg/server/sources"
)

type stubSpot struct {
	quote sources.SpotQuote
	err   error
	delay time.Duration
}

func (s stubSpot) Fetch(ctx context.Context) (sources.SpotQuote, error) {
	if err := wait(ctx, s.delay); err != nil {
		return sources.SpotQuote{}, err
	}
	return s.quote, s.err
}

type stubReference struct {
	ref   sources.ReferencePrice
	err   error
	delay time.Duration
}

func (s stubReference) Fetch(ctx context.Context) (sources.ReferencePrice, error) {
	if err := wait(ctx, s.delay); err != nil {
		return sources.ReferencePrice{}, err
	}
	return s.ref, s.err
}

type stubRate struct {
	rate  sources.ExchangeRate
	err   error
	delay time.Duration
}

func (s stubRate) Fetch(ctx context.Context) (sources.ExchangeRate, error) {
	if err := wait(ctx, s.delay); err != nil {
		return sources.ExchangeRate{}, err
	}
	return s.rate, s.err
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func goodSpot() stubSpot {
	open := dec("9868")
	return stubSpot{quote: sources.SpotQuote{
		Latest: dec("9875"),
		High:   dec("9920"),
		Low:    dec("9841"),
		Open:   &open,
	}}
}

func goodReference() stubReference {
	return stubReference{ref: sources.ReferencePrice{
		Price: dec("43.50"),
		AsOf:  time.Unix(1755856800, 0).UTC(),
	}}
}

func goodRate() stubRate {
	return stubRate{rate: sources.ExchangeRate{Rate: dec("7.15")}}
}

func newService(spot SpotFetcher, ref ReferenceFetcher, rate RateFetcher) *Service {
	return New(spot, ref, rate, logging.NewNoopLogger())
}

func TestSnapshot_AllSourcesSucceed(t *testing.T) {
	snap := newService(goodSpot(), goodReference(), goodRate()).Snapshot(context.Background())

	require.True(t, snap.OK())
	assert.Empty(t, snap.Errors)
	assert.False(t, snap.Timestamp.IsZero())

	require.NotNil(t, snap.SGE)
	assert.Equal(t, "42.9576", snap.SGE.PriceUSDPerOunce.StringFixed(4))
	assert.Equal(t, "9875", snap.SGE.PriceCNYPerKg.String())
	assert.Equal(t, "9920", snap.SGE.HighCNYPerKg.String())
	assert.Equal(t, "9841", snap.SGE.LowCNYPerKg.String())
	require.NotNil(t, snap.SGE.OpenCNYPerKg)
	assert.Equal(t, "9868", snap.SGE.OpenCNYPerKg.String())

	require.NotNil(t, snap.COMEX)
	assert.Equal(t, "43.5", snap.COMEX.Price.String())

	require.NotNil(t, snap.FX)
	assert.Equal(t, "7.15", snap.FX.Rate.String())

	require.NotNil(t, snap.Premium)
	assert.Equal(t, "-0.5424", snap.Premium.Absolute.StringFixed(4))
	assert.Equal(t, "-1.25", snap.Premium.Percent.StringFixed(2))
}

func TestSnapshot_FXFailureBlocksNormalization(t *testing.T) {
	rate := stubRate{err: fmt.Errorf("%w after 10s", sources.ErrTimeout)}
	snap := newService(goodSpot(), goodReference(), rate).Snapshot(context.Background())

	// COMEX alone keeps the cycle usable.
	require.True(t, snap.OK())
	assert.Nil(t, snap.FX)
	assert.Nil(t, snap.SGE)
	assert.Nil(t, snap.Premium)
	require.NotNil(t, snap.COMEX)

	require.Len(t, snap.Errors, 2)
	assert.Equal(t, "fx", snap.Errors[0].Source)
	assert.Contains(t, snap.Errors[0].Message, "timed out")
	assert.Equal(t, "sge", snap.Errors[1].Source)
	assert.Equal(t, "cannot convert without FX rate", snap.Errors[1].Message)
}

func TestSnapshot_ReferenceFailure(t *testing.T) {
	ref := stubReference{err: fmt.Errorf("%w: 502", sources.ErrUnexpectedStatus)}
	snap := newService(goodSpot(), ref, goodRate()).Snapshot(context.Background())

	require.True(t, snap.OK())
	assert.Nil(t, snap.COMEX)
	assert.Nil(t, snap.Premium)
	require.NotNil(t, snap.SGE)
	require.NotNil(t, snap.FX)

	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "comex", snap.Errors[0].Source)
	assert.Contains(t, snap.Errors[0].Message, "502")
}

func TestSnapshot_SpotFailure(t *testing.T) {
	spot := stubSpot{err: fmt.Errorf("%w: contract Ag(T+D)", sources.ErrMarketClosed)}
	snap := newService(spot, goodReference(), goodRate()).Snapshot(context.Background())

	require.True(t, snap.OK())
	assert.Nil(t, snap.SGE)
	assert.Nil(t, snap.Premium)
	require.NotNil(t, snap.COMEX)
	require.NotNil(t, snap.FX)

	// The failed fetch gets one entry; no extra normalization entry.
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "sge", snap.Errors[0].Source)
	assert.Contains(t, snap.Errors[0].Message, "market closed")
}

func TestSnapshot_SpotAndFXFail(t *testing.T) {
	spot := stubSpot{err: fmt.Errorf("%w: contract Ag(T+D)", sources.ErrMarketClosed)}
	rate := stubRate{err: fmt.Errorf("%w after 10s", sources.ErrTimeout)}
	snap := newService(spot, goodReference(), rate).Snapshot(context.Background())

	require.True(t, snap.OK())
	require.Len(t, snap.Errors, 2)
	assert.Equal(t, "fx", snap.Errors[0].Source)
	assert.Equal(t, "sge", snap.Errors[1].Source)
	// The spot fetch failed outright, so its own error wins over the
	// missing-rate message.
	assert.Contains(t, snap.Errors[1].Message, "market closed")
}

func TestSnapshot_SpotWithoutRateOrReference(t *testing.T) {
	ref := stubReference{err: fmt.Errorf("%w: empty items", sources.ErrPriceNotFound)}
	rate := stubRate{err: fmt.Errorf("%w: CNY", sources.ErrRateNotFound)}
	snap := newService(goodSpot(), ref, rate).Snapshot(context.Background())

	// The quote arrived but nothing can be made of it.
	require.False(t, snap.OK())
	assert.Nil(t, snap.SGE)
	assert.Nil(t, snap.COMEX)
	assert.Nil(t, snap.FX)
	assert.Nil(t, snap.Premium)

	require.Len(t, snap.Errors, 3)
	assert.Equal(t, "fx", snap.Errors[0].Source)
	assert.Equal(t, "comex", snap.Errors[1].Source)
	assert.Equal(t, "sge", snap.Errors[2].Source)
	assert.Equal(t, "cannot convert without FX rate", snap.Errors[2].Message)
}

func TestSnapshot_AllFail(t *testing.T) {
	spot := stubSpot{err: fmt.Errorf("%w after 10s", sources.ErrTimeout)}
	ref := stubReference{err: fmt.Errorf("%w: 503", sources.ErrUnexpectedStatus)}
	rate := stubRate{err: fmt.Errorf("%w: CNY", sources.ErrRateNotFound)}
	snap := newService(spot, ref, rate).Snapshot(context.Background())

	require.False(t, snap.OK())
	require.Len(t, snap.Errors, 3)
	assert.Equal(t, "fx", snap.Errors[0].Source)
	assert.Equal(t, "comex", snap.Errors[1].Source)
	assert.Equal(t, "sge", snap.Errors[2].Source)
}

func TestSnapshot_FailureDoesNotCancelOthers(t *testing.T) {
	// COMEX fails instantly; the two slow sources must still settle.
	spot := goodSpot()
	spot.delay = 50 * time.Millisecond
	rate := goodRate()
	rate.delay = 50 * time.Millisecond
	ref := stubReference{err: fmt.Errorf("%w: 500", sources.ErrUnexpectedStatus)}

	snap := newService(spot, ref, rate).Snapshot(context.Background())

	require.True(t, snap.OK())
	require.NotNil(t, snap.SGE)
	require.NotNil(t, snap.FX)
	assert.Nil(t, snap.COMEX)
	require.Len(t, snap.Errors, 1)
}

func TestSnapshot_FetchesRunConcurrently(t *testing.T) {
	spot := goodSpot()
	spot.delay = 100 * time.Millisecond
	ref := goodReference()
	ref.delay = 100 * time.Millisecond
	rate := goodRate()
	rate.delay = 100 * time.Millisecond

	start := time.Now()
	snap := newService(spot, ref, rate).Snapshot(context.Background())
	elapsed := time.Since(start)

	require.True(t, snap.OK())
	assert.Empty(t, snap.Errors)
	// Sequential fetches would take at least 300ms.
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestSnapshot_JSONShape(t *testing.T) {
	snap := newService(goodSpot(), goodReference(), goodRate()).Snapshot(context.Background())

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, key := range []string{"timestamp", "sge", "comex", "fx", "premium", "errors"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "[]", string(m["errors"]))

	var sge map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(m["sge"], &sge))
	for _, key := range []string{"price_usd_per_ounce", "price_cny_per_kg", "high_cny_per_kg", "low_cny_per_kg", "open_cny_per_kg"} {
		assert.Contains(t, sge, key)
	}
}

func TestSnapshot_JSONOmitsAbsentSections(t *testing.T) {
	spot := stubSpot{err: fmt.Errorf("%w: contract Ag(T+D)", sources.ErrMarketClosed)}
	rate := stubRate{err: fmt.Errorf("%w after 10s", sources.ErrTimeout)}
	snap := newService(spot, goodReference(), rate).Snapshot(context.Background())

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.NotContains(t, m, "sge")
	assert.NotContains(t, m, "fx")
	assert.NotContains(t, m, "premium")
	assert.Contains(t, m, "comex")

	var errs []SourceError
	require.NoError(t, json.Unmarshal(m["errors"], &errs))
	require.Len(t, errs, 2)
	assert.Equal(t, "fx", errs[0].Source)
	assert.Equal(t, "sge", errs[1].Source)
}
