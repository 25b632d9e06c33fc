// Package sources provides the upstream quote adapters and their shared
// fetch plumbing.
package sources

import "errors"

var (
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrTimeout indicates that a fetch exceeded its time budget.
	ErrTimeout = errors.New("request timed out")
	// ErrMarketClosed indicates that no quote row matched or the latest price is zero.
	ErrMarketClosed = errors.New("price not found or market closed")
	// ErrPriceNotFound indicates that the reference feed carried no usable price.
	ErrPriceNotFound = errors.New("price not found")
	// ErrRateNotFound indicates that the requested currency rate is absent.
	ErrRateNotFound = errors.New("rate not found")
	// ErrInvalidValue indicates a value that is present but not a usable number.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidRate indicates a zero, negative or non-finite exchange rate.
	ErrInvalidRate = errors.New("invalid rate")
	// ErrInvalidResponse indicates an invalid response from the source.
	ErrInvalidResponse = errors.New("invalid response")
)

// Outcome classifies an adapter error for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
