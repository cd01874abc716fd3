package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"heat-dispatch/internal/dispatch"
)

var unitsFlags struct {
	catalog string
	price   float64
}

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the catalog in merit order at an electricity price",
	RunE:  runUnits,
}

func init() {
	unitsCmd.Flags().StringVar(&unitsFlags.catalog, "catalog", "", "heating grid file (overrides catalog_file)")
	unitsCmd.Flags().Float64Var(&unitsFlags.price, "price", 0, "electricity price per MWh")
	rootCmd.AddCommand(unitsCmd)
}

func runUnits(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogFile = unitsFlags.catalog
	}
	grid, err := cfg.Catalog()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tunit\trole\tmax heat\tnet cost\t")
	for i, r := range dispatch.MeritOrder(grid.Units, unitsFlags.price) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t\n", i+1, r.Unit.Name, r.Unit.Role(), r.Unit.MaxHeat, dispatch.Round2(r.NetCost))
	}
	return tw.Flush()
}
