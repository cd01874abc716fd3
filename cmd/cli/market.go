package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"heat-dispatch/internal/analysis"
	"heat-dispatch/internal/data"
	"heat-dispatch/internal/logger"
)

var marketFlags struct {
	url  string
	from string
	to   string
	area string
	out  string
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Market data commands",
}

var marketFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch periods from the market endpoint and write them as CSV",
	RunE:  runMarketFetch,
}

func init() {
	f := marketFetchCmd.Flags()
	f.StringVar(&marketFlags.url, "url", "", "market endpoint (overrides market.url)")
	f.StringVar(&marketFlags.from, "from", "", "window start, RFC 3339 or YYYY-MM-DD")
	f.StringVar(&marketFlags.to, "to", "", "window end, RFC 3339 or YYYY-MM-DD")
	f.StringVar(&marketFlags.area, "area", "", "price area (overrides market.area)")
	f.StringVarP(&marketFlags.out, "out", "o", "", "CSV output file, stdout when empty")
	marketCmd.AddCommand(marketFetchCmd)
	rootCmd.AddCommand(marketCmd)
}

func runMarketFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("url") {
		cfg.Market.URL = marketFlags.url
	}
	if cmd.Flags().Changed("area") {
		cfg.Market.Area = marketFlags.area
	}
	if cfg.Market.URL == "" {
		return fmt.Errorf("market url is required (--url or market.url)")
	}

	q := data.MarketQuery{Area: cfg.Market.Area}
	if q.From, err = parseWindowTime(marketFlags.from); err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	if q.To, err = parseWindowTime(marketFlags.to); err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	client := newMarketClient(cfg, logger.New("market"))
	defer client.Cache.Close()
	periods, err := client.FetchPeriods(cmd.Context(), q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if marketFlags.out != "" {
		if err := os.MkdirAll(filepath.Dir(marketFlags.out), 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		f, err := os.Create(marketFlags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := data.WriteMarketCSV(out, periods); err != nil {
		return err
	}

	m := analysis.SummarizeMarket(periods)
	fmt.Fprintf(cmd.ErrOrStderr(), "Fetched %d periods, demand=%.2f MWh, price mean=%.2f p05=%.2f p95=%.2f\n",
		m.Count, m.Demand, m.MeanPrice, m.P05Price, m.P95Price)
	return nil
}

func parseWindowTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
