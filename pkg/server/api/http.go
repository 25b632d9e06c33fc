// Package api provides the HTTP and WebSocket endpoints for the premium
// server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/reverseeth/silver-prices/pkg/logging"
	"github.com/reverseeth/silver-prices/pkg/metrics"
	"github.com/reverseeth/silver-prices/pkg/server/aggregator"
)

// Snapshotter runs one aggregation cycle.
type Snapshotter interface {
	Snapshot(ctx context.Context) *aggregator.Snapshot
}

// Server represents the HTTP API server.
type Server struct {
	addr     string
	agg      Snapshotter
	server   *http.Server
	logger   *logging.Logger
	cacheTTL time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	lastBody  []byte
	lastOK    bool
	cacheTime time.Time

	wsServer *WebSocketServer // Optional WebSocket server for streaming
}

type snapshotResult struct {
	body []byte
	ok   bool
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, agg Snapshotter, cacheTTL time.Duration, logger *logging.Logger) *Server {
	return &Server{
		addr:     addr,
		agg:      agg,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// SetWebSocketServer sets the WebSocket server for streaming updates.
func (s *Server) SetWebSocketServer(ws *WebSocketServer) {
	s.wsServer = ws
}

// Handler returns the server's routing tree, wrapped in the CORS layer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/premium", s.handlePremium)
	mux.HandleFunc("/premium", s.handlePremium) // unversioned alias
	return withCORS(mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// RunRefreshLoop re-runs the aggregation cycle on a fixed interval so that
// stream clients keep receiving snapshots without HTTP traffic. Blocks
// until ctx is done.
func (s *Server) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting refresh loop", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.refresh(ctx); err != nil {
				s.logger.Error("Background refresh failed", "error", err)
			}
		}
	}
}

// handleHealth handles /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePremium handles /v1/premium and /premium endpoints.
func (s *Server) handlePremium(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		metrics.RecordHTTPRequest(r.URL.Path, strconv.Itoa(status), time.Since(start))
	}()

	s.setCacheHeaders(w)

	res, fresh := s.cached()
	if !fresh {
		var err error
		res, err = s.refresh(r.Context())
		if err != nil {
			status = http.StatusInternalServerError
			s.logger.Error("Failed to build snapshot", "error", err)
			http.Error(w, "failed to build snapshot", status)
			return
		}
	}

	// Partial data is still a success; only a cycle with nothing usable
	// maps to a gateway failure.
	if !res.ok {
		status = http.StatusBadGateway
	}
	s.sendJSON(w, status, res.body)
}

// cached returns the serialized snapshot while it is still fresh.
func (s *Server) cached() (snapshotResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastBody == nil || time.Since(s.cacheTime) >= s.cacheTTL {
		return snapshotResult{}, false
	}
	return snapshotResult{body: s.lastBody, ok: s.lastOK}, true
}

// refresh runs one aggregation cycle, updates the cache and notifies
// stream clients. Concurrent callers share a single in-flight cycle.
func (s *Server) refresh(ctx context.Context) (snapshotResult, error) {
	v, err, _ := s.group.Do("snapshot", func() (interface{}, error) {
		snap := s.agg.Snapshot(ctx)

		body, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		res := snapshotResult{body: body, ok: snap.OK()}

		s.mu.Lock()
		s.lastBody = res.body
		s.lastOK = res.ok
		s.cacheTime = time.Now()
		s.mu.Unlock()

		if s.wsServer != nil {
			s.wsServer.SendUpdate(snap)
		}

		return res, nil
	})
	if err != nil {
		return snapshotResult{}, err
	}
	return v.(snapshotResult), nil
}

func (s *Server) setCacheHeaders(w http.ResponseWriter) {
	ttl := int(s.cacheTTL.Seconds())
	if ttl <= 0 {
		w.Header().Set("Cache-Control", "no-store")
		return
	}
	w.Header().Set("Cache-Control",
		fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", ttl, 5*ttl))
}

// sendJSON sends a pre-serialized JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// withCORS sets permissive cross-origin headers and short-circuits
// preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
