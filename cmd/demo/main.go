package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"heat-dispatch/internal/analysis"
	"heat-dispatch/internal/data"
	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/export"
	"heat-dispatch/internal/model"
)

// Demo:
// - Load a heating grid (or use the bundled four-unit one)
// - Load market periods (or synthesize a winter day)
// - Dispatch and print the first periods plus a per-unit summary
func main() {
	catalogPath := flag.String("catalog", "", "Path to a heating grid file (optional)")
	marketPath := flag.String("market", "", "Path to market CSV or JSON (optional)")
	n := flag.Int("n", 6, "Number of periods to print")
	outCSV := flag.String("out", "", "Optional path to write results CSV (e.g. results/dispatch.csv)")
	flag.Parse()

	grid := bundledGrid()
	if *catalogPath != "" {
		g, err := data.LoadCatalog(*catalogPath)
		if err != nil {
			panic(err)
		}
		grid = g
	}

	periods := syntheticDay(time.Date(2023, 2, 8, 0, 0, 0, 0, time.UTC))
	if *marketPath != "" {
		p, err := data.LoadMarket(*marketPath)
		if err != nil {
			panic(err)
		}
		periods = p
	}

	run, err := dispatch.New().Run(grid.Units, periods)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Loaded %d units (%s) and %d periods\n\n", len(grid.Units), grid.Name, len(periods))

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "period\tprice\tdemand\tunit\theat\telec\tcosts\t")
	perPeriod := run.Units
	for i := 0; i < min(*n, run.Periods()); i++ {
		p := periods[i]
		for _, r := range run.Results[i*perPeriod : (i+1)*perPeriod] {
			if r.Idle() {
				continue
			}
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%s\t%.2f\t%.2f\t%.2f\t\n",
				p.TimeFrom.Format("2006-01-02 15:04"), p.ElectricityPrice, p.HeatDemand,
				r.UnitName, r.ProducedHeat, r.ElectricityProduced, r.Costs)
		}
	}
	_ = tw.Flush()

	fmt.Println()
	tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "unit\theat\tutil\tcost/MWh\t")
	for _, s := range analysis.RankByCost(analysis.SummarizeUnits(grid.Units, run.Results)) {
		fmt.Fprintf(tw, "%s\t%.2f\t%.0f%%\t%.2f\t\n", s.Unit, s.ProducedHeat, s.Utilization*100, s.AvgCostPerMWh)
	}
	_ = tw.Flush()

	if *outCSV != "" {
		if err := export.WriteFile(*outCSV, export.FormatCSV, run.Results, export.Options{}); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	t := run.Totals
	fmt.Printf("\nDone. Heat=%.2f MWh  Electricity=%.2f MWh  Costs=%.2f  CO2=%.2f kg\n", t.Heat, t.Electricity, t.Costs, t.CO2)
}

func bundledGrid() *model.HeatingGrid {
	return &model.HeatingGrid{
		Name:      "Heatington",
		Buildings: 1600,
		Units: []model.ProductionUnit{
			{Name: "GB", MaxHeat: 5, ProductionCost: 500, CO2Emissions: 215, GasConsumption: 1.1},
			{Name: "OB", MaxHeat: 4, ProductionCost: 700, CO2Emissions: 265, GasConsumption: 1.2},
			{Name: "GM", MaxHeat: 3.6, ProductionCost: 1100, CO2Emissions: 640, GasConsumption: 1.9, MaxElectricity: 2.7},
			{Name: "EK", MaxHeat: 8, ProductionCost: 50, MaxElectricity: -8},
		},
	}
}

// syntheticDay builds 24 hourly periods with a morning and an evening peak.
func syntheticDay(start time.Time) []model.MarketCondition {
	out := make([]model.MarketCondition, 24)
	for h := range out {
		x := float64(h)
		peak := math.Exp(-math.Pow(x-8, 2)/6) + math.Exp(-math.Pow(x-18, 2)/6)
		from := start.Add(time.Duration(h) * time.Hour)
		out[h] = model.MarketCondition{
			TimeFrom:         from,
			TimeTo:           from.Add(time.Hour),
			HeatDemand:       dispatch.Round2(6 + 2.4*peak),
			ElectricityPrice: dispatch.Round2(1000 + 800*peak),
		}
	}
	return out
}
