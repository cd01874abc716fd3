package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"heat-dispatch/internal/analysis"
	"heat-dispatch/internal/config"
	"heat-dispatch/internal/data"
	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/export"
	"heat-dispatch/internal/logger"
	"heat-dispatch/internal/metrics"
	"heat-dispatch/internal/model"
)

var optimizeFlags struct {
	catalog  string
	market   string
	out      string
	format   string
	selected []string
	skipIdle bool
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Dispatch the catalog over the market periods and write the results",
	RunE:  runOptimize,
}

func init() {
	f := optimizeCmd.Flags()
	f.StringVar(&optimizeFlags.catalog, "catalog", "", "heating grid file (overrides catalog_file)")
	f.StringVar(&optimizeFlags.market, "market", "", "market data CSV or JSON file (overrides market.file)")
	f.StringVarP(&optimizeFlags.out, "out", "o", "", "output file, stdout when empty (overrides output.path)")
	f.StringVarP(&optimizeFlags.format, "format", "f", "", "csv, xml or json (overrides output.format)")
	f.StringSliceVar(&optimizeFlags.selected, "select", nil, "units to dispatch, all when empty")
	f.BoolVar(&optimizeFlags.skipIdle, "skip-idle", false, "omit zero-production rows from the output")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyOptimizeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logger.New("cli")

	grid, err := cfg.Catalog()
	if err != nil {
		return err
	}
	periods, err := loadPeriods(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Debugw("inputs loaded", map[string]any{"units": len(grid.Units), "periods": len(periods)})

	sink := buildSink(cfg)
	start := time.Now()
	run, err := dispatch.New().Run(grid.Units, periods)
	ev := metrics.RunEvent{Status: metrics.StatusOK, Duration: time.Since(start), Time: start}
	if err != nil {
		ev.Status = metrics.StatusError
		recordRun(sink, ev, log)
		return fmt.Errorf("optimization failed to produce any results: %w", err)
	}
	ev.Results = run.Results
	recordRun(sink, ev, log)

	format := cfg.Output.ExportFormat()
	opts := cfg.Output.ExportOptions()
	if cfg.Output.Path == "" {
		if err := export.Write(cmd.OutOrStdout(), format, run.Results, opts); err != nil {
			return err
		}
	} else {
		if err := export.WriteFile(cfg.Output.Path, format, run.Results, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(run.Results), cfg.Output.Path)
	}

	printRunSummary(cmd.ErrOrStderr(), grid, run)
	return nil
}

func applyOptimizeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.CatalogFile = optimizeFlags.catalog
	}
	if flags.Changed("market") {
		cfg.Market.File = optimizeFlags.market
	}
	if flags.Changed("out") {
		cfg.Output.Path = optimizeFlags.out
		if !flags.Changed("format") {
			if f, err := export.FormatFromPath(optimizeFlags.out); err == nil {
				cfg.Output.Format = string(f)
			}
		}
	}
	if flags.Changed("format") {
		cfg.Output.Format = optimizeFlags.format
	}
	if flags.Changed("select") {
		cfg.Select = optimizeFlags.selected
	}
	if flags.Changed("skip-idle") {
		cfg.Output.SkipIdle = optimizeFlags.skipIdle
	}
}

// loadPeriods reads market.file when set and falls back to market.url.
func loadPeriods(ctx context.Context, cfg *config.Config, log logger.Logger) ([]model.MarketCondition, error) {
	if cfg.Market.File != "" {
		return data.LoadMarket(cfg.Market.File)
	}
	if cfg.Market.URL == "" {
		return nil, fmt.Errorf("no market data: set market.file or market.url")
	}
	client := newMarketClient(cfg, log)
	defer client.Cache.Close()
	return client.FetchPeriods(ctx, data.MarketQuery{Area: cfg.Market.Area})
}

func newMarketClient(cfg *config.Config, log logger.Logger) *data.MarketClient {
	client := data.NewMarketClient(cfg.Market.APIKey, cfg.Market.URL)
	client.Client.Timeout = cfg.Market.Timeout
	client.Cache = data.NewResponseCache(cfg.Market.CacheTTL)
	client.Log = log
	return client
}

// buildSink returns the InfluxDB sink when configured. Prometheus is only
// exposed by the API server.
func buildSink(cfg *config.Config) metrics.Sink {
	if !cfg.Metrics.Influx.Enabled() {
		return metrics.NopSink{}
	}
	in := cfg.Metrics.Influx
	return metrics.NewInfluxSinkWithFallback(in.URL, in.Token, in.Org, in.Bucket)
}

func recordRun(sink metrics.Sink, ev metrics.RunEvent, log logger.Logger) {
	if err := sink.RecordRun(ev); err != nil {
		log.Warnf("record run: %v", err)
	}
}

func printRunSummary(w io.Writer, grid *model.HeatingGrid, run *dispatch.Run) {
	t := run.Totals
	fmt.Fprintf(w, "Dispatched %d units over %d periods\n", run.Units, run.Periods())
	fmt.Fprintf(w, "Heat=%.2f MWh  Electricity=%.2f MWh  Costs=%.2f  CO2=%.2f kg\n", t.Heat, t.Electricity, t.Costs, t.CO2)
	if t.Shortfall > 0 {
		uncovered := 0
		for _, c := range run.Coverage {
			if !c.Covered() {
				uncovered++
			}
		}
		fmt.Fprintf(w, "Uncovered demand: %.2f MWh in %d periods\n", t.Shortfall, uncovered)
	}
	writeUnitTable(w, analysis.SummarizeUnits(grid.Units, run.Results))
}
