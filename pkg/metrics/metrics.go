// Package metrics provides Prometheus metrics for the silver-prices service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequestsTotal is a counter of upstream fetch attempts by outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream fetch attempts",
		},
		[]string{"source", "outcome"},
	)

	// UpstreamRequestDuration is a histogram of upstream fetch latencies.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream fetch operations",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"source"},
	)

	// SnapshotsTotal is a counter of aggregation cycles by result status.
	SnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshots_total",
			Help: "Total number of aggregation cycles",
		},
		[]string{"status"},
	)

	// SnapshotDuration is a histogram of full aggregation cycle durations.
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_duration_seconds",
			Help:    "Duration of full aggregation cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PremiumPercent is a gauge of the last computed Shanghai premium in percent.
	PremiumPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "silver_premium_percent",
			Help: "Last computed SGE over COMEX premium in percent",
		},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 15},
		},
		[]string{"endpoint"},
	)
)

// Init initializes the Prometheus metrics registry.
func Init() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		SnapshotsTotal,
		SnapshotDuration,
		PremiumPercent,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address and path.
func ServeHTTP(addr, path string) error {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordUpstreamRequest records one upstream fetch attempt.
func RecordUpstreamRequest(source, outcome string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(source, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordSnapshot records one aggregation cycle.
func RecordSnapshot(status string, duration time.Duration) {
	SnapshotsTotal.WithLabelValues(status).Inc()
	SnapshotDuration.Observe(duration.Seconds())
}

// RecordPremium records the last computed premium percentage.
func RecordPremium(percent float64) {
	PremiumPercent.Set(percent)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
