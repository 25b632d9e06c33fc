// Package client provides an HTTP client for the premium snapshot API.
package client

import "errors"

var (
	// ErrServerHTTPError indicates that the server returned an unexpected HTTP status.
	ErrServerHTTPError = errors.New("server returned HTTP error")

	// ErrAllSourcesFailed indicates the server answered but every upstream failed;
	// the returned snapshot carries the per-source errors.
	ErrAllSourcesFailed = errors.New("all upstream sources failed")
)
