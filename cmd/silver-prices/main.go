package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reverseeth/silver-prices/pkg/config"
	"github.com/reverseeth/silver-prices/pkg/logging"
	"github.com/reverseeth/silver-prices/pkg/metrics"
	"github.com/reverseeth/silver-prices/pkg/server/aggregator"
	"github.com/reverseeth/silver-prices/pkg/server/api"
	"github.com/reverseeth/silver-prices/pkg/server/sources/comex"
	"github.com/reverseeth/silver-prices/pkg/server/sources/fx"
	"github.com/reverseeth/silver-prices/pkg/server/sources/sge"
	"github.com/reverseeth/silver-prices/pkg/version"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
	once       = flag.Bool("once", false, "Run a single aggregation cycle, print the snapshot and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("silver-prices version %s\n", version.Version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	agg := buildAggregator(cfg, logger)

	if *once {
		runOnce(agg)
		return
	}

	logger.Info("Starting silver-prices", "version", version.Version)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr, cfg.Metrics.Path); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- runServer(ctx, cfg, agg, logger)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()

		// Wait for the server to drain
		select {
		case <-errChan:
		case <-time.After(10 * time.Second):
			logger.Warn("Shutdown timed out")
		}
	case err := <-errChan:
		if err != nil {
			logger.Error("Server failed", "error", err)
		}
	}

	logger.Info("Shutdown complete")
}

// buildAggregator wires the three upstream sources into the aggregation service.
func buildAggregator(cfg *config.Config, logger *logging.Logger) *aggregator.Service {
	spot := sge.New(cfg.Sources.SGE, logger)
	reference := comex.New(cfg.Sources.COMEX, logger)
	rate := fx.New(cfg.Sources.FX, logger)

	return aggregator.New(spot, reference, rate, logger)
}

// runOnce executes one aggregation cycle and prints the snapshot. The exit
// code reports whether any price side was obtained.
func runOnce(agg *aggregator.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap := agg.Snapshot(ctx)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))

	if !snap.OK() {
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg *config.Config, agg *aggregator.Service, logger *logging.Logger) error {
	server := api.NewServer(cfg.Server.HTTP.Addr, agg, cfg.Server.CacheTTL.ToDuration(), logger)

	// Start WebSocket server if enabled
	var wsServer *api.WebSocketServer
	if cfg.Server.WebSocket.Enabled {
		wsServer = api.NewWebSocketServer(cfg.Server.WebSocket.Addr, logger)
		server.SetWebSocketServer(wsServer)

		go func() {
			if err := wsServer.Start(ctx); err != nil {
				logger.Error("WebSocket server error", "error", err)
			}
		}()

		// Stream clients need fresh snapshots even when nobody polls HTTP
		go server.RunRefreshLoop(ctx, cfg.Server.RefreshInterval.ToDuration())
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		server.Stop(shutdownCtx)
		if wsServer != nil {
			wsServer.Stop()
		}
	}()

	return server.Start()
}
