// Package version provides version information for the silver-prices application.
package version

// Version is the current version of the silver-prices application.
const Version = "0.3.1"

// UserAgent returns the agent string sent with upstream requests.
// Format: silver-prices/{version}
func UserAgent() string {
	return "silver-prices/" + Version
}
