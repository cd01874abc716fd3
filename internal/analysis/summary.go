// Package analysis turns dispatch results into per-unit and per-market
// summaries for reports and charts.
package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/model"
)

// GroupByUnit splits results into unit-keyed slices, keeping record order
// inside each slice.
func GroupByUnit(results []model.OptimizationResult) map[string][]model.OptimizationResult {
	out := map[string][]model.OptimizationResult{}
	for _, r := range results {
		out[r.UnitName] = append(out[r.UnitName], r)
	}
	return out
}

// UnitSummary aggregates one unit over a run.
type UnitSummary struct {
	Unit string     `json:"unit"`
	Role model.Role `json:"role"`

	Periods       int `json:"periods"`
	ActivePeriods int `json:"active_periods"`

	ProducedHeat        float64 `json:"produced_heat"`
	ElectricityProduced float64 `json:"electricity_produced"`
	PrimaryEnergy       float64 `json:"primary_energy"`
	Costs               float64 `json:"costs"`
	CO2Emissions        float64 `json:"co2_emissions"`

	// Utilization is produced heat over max_heat times the number of periods.
	Utilization float64 `json:"utilization"`
	// AvgCostPerMWh is total cost over total heat; zero for an idle unit.
	AvgCostPerMWh float64 `json:"avg_cost_per_mwh"`
	// P05/P95 of per-period cost per MWh over active periods.
	P05CostPerMWh float64 `json:"p05_cost_per_mwh"`
	P95CostPerMWh float64 `json:"p95_cost_per_mwh"`
}

// SummarizeUnits returns one summary per catalog unit in catalog order.
// Units without any result rows still get a zeroed summary.
func SummarizeUnits(units []model.ProductionUnit, results []model.OptimizationResult) []UnitSummary {
	byUnit := GroupByUnit(results)
	out := make([]UnitSummary, 0, len(units))
	for _, u := range units {
		out = append(out, summarizeUnit(u, byUnit[u.Name]))
	}
	return out
}

func summarizeUnit(u model.ProductionUnit, rows []model.OptimizationResult) UnitSummary {
	s := UnitSummary{Unit: u.Name, Role: u.Role(), Periods: len(rows)}
	if len(rows) == 0 {
		return s
	}

	heat := make([]float64, len(rows))
	costs := make([]float64, len(rows))
	var perMWh []float64
	for i, r := range rows {
		heat[i] = r.ProducedHeat
		costs[i] = r.Costs
		s.ElectricityProduced += r.ElectricityProduced
		s.PrimaryEnergy += r.PrimaryEnergyConsumption
		s.CO2Emissions += r.CO2Emissions
		if !r.Idle() {
			s.ActivePeriods++
		}
		if r.ProducedHeat > 0 {
			perMWh = append(perMWh, r.Costs/r.ProducedHeat)
		}
	}
	s.ProducedHeat = floats.Sum(heat)
	s.Costs = floats.Sum(costs)

	if u.MaxHeat > 0 {
		s.Utilization = s.ProducedHeat / (u.MaxHeat * float64(len(rows)))
	}
	if s.ProducedHeat > 0 {
		s.AvgCostPerMWh = s.Costs / s.ProducedHeat
	}
	if len(perMWh) > 0 {
		sort.Float64s(perMWh)
		s.P05CostPerMWh = stat.Quantile(0.05, stat.Empirical, perMWh, nil)
		s.P95CostPerMWh = stat.Quantile(0.95, stat.Empirical, perMWh, nil)
	}

	s.ProducedHeat = dispatch.Round2(s.ProducedHeat)
	s.ElectricityProduced = dispatch.Round2(s.ElectricityProduced)
	s.PrimaryEnergy = dispatch.Round2(s.PrimaryEnergy)
	s.Costs = dispatch.Round2(s.Costs)
	s.CO2Emissions = dispatch.Round2(s.CO2Emissions)
	s.Utilization = dispatch.Round2(s.Utilization)
	s.AvgCostPerMWh = dispatch.Round2(s.AvgCostPerMWh)
	s.P05CostPerMWh = dispatch.Round2(s.P05CostPerMWh)
	s.P95CostPerMWh = dispatch.Round2(s.P95CostPerMWh)
	return s
}

// MarketSummary describes the forecast a run was computed against.
type MarketSummary struct {
	Count     int       `json:"count"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Demand    float64   `json:"total_demand"`
	MinPrice  float64   `json:"min_price"`
	MaxPrice  float64   `json:"max_price"`
	MeanPrice float64   `json:"mean_price"`
	P05Price  float64   `json:"p05_price"`
	P95Price  float64   `json:"p95_price"`
	StdPrice  float64   `json:"std_price"`
}

// SummarizeMarket computes price statistics over the periods. Start and End
// come from the first and last period as given.
func SummarizeMarket(periods []model.MarketCondition) MarketSummary {
	m := MarketSummary{Count: len(periods)}
	if len(periods) == 0 {
		return m
	}
	m.Start = periods[0].TimeFrom
	m.End = periods[len(periods)-1].TimeTo

	prices := make([]float64, len(periods))
	for i, p := range periods {
		prices[i] = p.ElectricityPrice
		if p.HeatDemand > 0 {
			m.Demand += p.HeatDemand
		}
	}
	m.MeanPrice, m.StdPrice = stat.MeanStdDev(prices, nil)
	if len(prices) == 1 {
		m.StdPrice = 0
	}
	sort.Float64s(prices)
	m.MinPrice = prices[0]
	m.MaxPrice = prices[len(prices)-1]
	m.P05Price = stat.Quantile(0.05, stat.Empirical, prices, nil)
	m.P95Price = stat.Quantile(0.95, stat.Empirical, prices, nil)

	m.Demand = dispatch.Round2(m.Demand)
	m.MeanPrice = dispatch.Round2(m.MeanPrice)
	m.StdPrice = dispatch.Round2(m.StdPrice)
	return m
}
