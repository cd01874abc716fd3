package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"heat-dispatch/internal/api"
	"heat-dispatch/internal/config"
	"heat-dispatch/internal/data"
	"heat-dispatch/internal/logger"
	"heat-dispatch/internal/metrics"
)

func main() {
	log := logger.New("api")
	if err := run(log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}

	grid, err := cfg.Catalog()
	if err != nil {
		return err
	}
	log.Infow("catalog loaded", map[string]any{"units": len(grid.Units), "file": cfg.CatalogFile})

	if cfg.API.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Deps{
		Grid:        grid,
		Log:         log,
		RunTTL:      cfg.API.RunTTL,
		CORSOrigins: cfg.API.CORSOrigins,
	}

	if cfg.Market.URL != "" {
		client := data.NewMarketClient(cfg.Market.APIKey, cfg.Market.URL)
		client.Client.Timeout = cfg.Market.Timeout
		client.Cache = data.NewResponseCache(cfg.Market.CacheTTL)
		client.Log = logger.New("market")
		defer client.Cache.Close()
		deps.Market = client
	} else {
		log.Warnf("market.url not set; requests must carry their own periods")
	}

	var sinks []metrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		prom, err := metrics.NewPromSink()
		if err != nil {
			return fmt.Errorf("prometheus: %w", err)
		}
		sinks = append(sinks, prom)
		deps.Metrics = true
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if in := cfg.Metrics.Influx; in.Enabled() {
		sink := metrics.NewInfluxSinkWithFallback(in.URL, in.Token, in.Org, in.Bucket)
		if s, ok := sink.(*metrics.InfluxSink); ok {
			defer s.Close()
		}
		sinks = append(sinks, sink)
	}
	deps.Sink = metrics.NewMultiSink(sinks...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// configPath returns HEAT_CONFIG_FILE, or config.yaml when it exists.
// An empty path configures the server from HEAT_* variables alone.
func configPath() string {
	if p := os.Getenv("HEAT_CONFIG_FILE"); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return "config.yaml"
}
