package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"heat-dispatch/internal/analysis"
	"heat-dispatch/internal/export"
	"heat-dispatch/internal/model"
)

var summaryFlags struct {
	catalog string
	rank    bool
}

var summaryCmd = &cobra.Command{
	Use:   "summary <results-file>",
	Short: "Summarize a CSV or XML results file per unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFlags.catalog, "catalog", "", "heating grid file (overrides catalog_file)")
	summaryCmd.Flags().BoolVar(&summaryFlags.rank, "rank", false, "order units by average cost per MWh")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogFile = summaryFlags.catalog
	}
	// Selection applies to dispatch, not to reading back results.
	cfg.Select = nil
	grid, err := cfg.Catalog()
	if err != nil {
		return err
	}

	results, err := readResults(args[0])
	if err != nil {
		return err
	}

	sums := analysis.SummarizeUnits(unitsInResults(grid.Units, results), results)
	if summaryFlags.rank {
		sums = analysis.RankByCost(sums)
	}
	writeUnitTable(cmd.OutOrStdout(), sums)
	return nil
}

func readResults(path string) ([]model.OptimizationResult, error) {
	format, err := export.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case export.FormatCSV:
		return export.ReadCSV(f)
	case export.FormatXML:
		return export.ReadXML(f)
	default:
		return nil, fmt.Errorf("summary reads csv or xml results, got %s", format)
	}
}

// unitsInResults keeps the catalog units that appear in results, so a
// file produced with a unit selection does not report the others as idle.
func unitsInResults(units []model.ProductionUnit, results []model.OptimizationResult) []model.ProductionUnit {
	seen := analysis.GroupByUnit(results)
	out := make([]model.ProductionUnit, 0, len(units))
	for _, u := range units {
		if _, ok := seen[u.Name]; ok {
			out = append(out, u)
		}
	}
	return out
}

func writeUnitTable(w io.Writer, sums []analysis.UnitSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "unit\theat\telectricity\tcosts\tco2\tutil\tcost/MWh\tp05\tp95\t")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.0f%%\t%.2f\t%.2f\t%.2f\t\n",
			s.Unit, s.ProducedHeat, s.ElectricityProduced, s.Costs, s.CO2Emissions,
			s.Utilization*100, s.AvgCostPerMWh, s.P05CostPerMWh, s.P95CostPerMWh)
	}
	_ = tw.Flush()
}
