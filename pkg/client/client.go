package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reverseeth/silver-prices/pkg/server/aggregator"
	"github.com/reverseeth/silver-prices/pkg/version"
)

// Client fetches premium snapshots from a running server.
type Client interface {
	GetSnapshot(ctx context.Context) (*aggregator.Snapshot, error)
}

// HTTPClient implements Client using HTTP requests
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new snapshot client for the given server base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetSnapshot fetches the latest snapshot from the server. A degraded
// answer (every upstream failed) returns the snapshot together with
// ErrAllSourcesFailed so callers can still inspect the error entries.
func (c *HTTPClient) GetSnapshot(ctx context.Context) (*aggregator.Snapshot, error) {
	url := c.baseURL + "/v1/premium"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	// A 502 still carries the full snapshot body with per-source errors
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadGateway {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %d: %s", ErrServerHTTPError, resp.StatusCode, string(body))
	}

	var snap aggregator.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if resp.StatusCode == http.StatusBadGateway {
		return &snap, ErrAllSourcesFailed
	}

	return &snap, nil
}
