// Package aggregator runs the three upstream fetches concurrently and
// assembles the composite premium snapshot.
package aggregator

import "errors"

var (
	// ErrFXRateUnavailable indicates that the SGE quote was fetched but
	// could not be normalized because no FX rate was available this cycle.
	ErrFXRateUnavailable = errors.New("cannot convert without FX rate")
)
