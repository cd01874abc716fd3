package dispatch

import (
	"time"

	"heat-dispatch/internal/model"
)

// PeriodCoverage tells how much of a period's demand the dispatch covered.
type PeriodCoverage struct {
	TimeFrom time.Time `json:"time_from"`
	TimeTo   time.Time `json:"time_to"`

	Demand   float64 `json:"demand"`
	Produced float64 `json:"produced"`
	// Shortfall is the demand left uncovered once every unit ran at full output.
	Shortfall float64 `json:"shortfall"`
}

// Covered reports whether the period's demand was fully met.
func (c PeriodCoverage) Covered() bool {
	return c.Shortfall == 0
}

// Totals sums the result records of a run.
type Totals struct {
	Heat          float64 `json:"heat"`
	Electricity   float64 `json:"electricity"`
	PrimaryEnergy float64 `json:"primary_energy"`
	Costs         float64 `json:"costs"`
	CO2           float64 `json:"co2"`
	Shortfall     float64 `json:"shortfall"`
}

func (t *Totals) add(r model.OptimizationResult) {
	t.Heat += r.ProducedHeat
	t.Electricity += r.ElectricityProduced
	t.PrimaryEnergy += r.PrimaryEnergyConsumption
	t.Costs += r.Costs
	t.CO2 += r.CO2Emissions
}

func (t *Totals) round() {
	t.Heat = Round2(t.Heat)
	t.Electricity = Round2(t.Electricity)
	t.PrimaryEnergy = Round2(t.PrimaryEnergy)
	t.Costs = Round2(t.Costs)
	t.CO2 = Round2(t.CO2)
	t.Shortfall = Round2(t.Shortfall)
}

// Run is the outcome of one Engine.Run call.
// Results is the primary artifact; Coverage and Totals are derived from it.
type Run struct {
	Results  []model.OptimizationResult
	Coverage []PeriodCoverage
	Totals   Totals
	Units    int
}

// Periods returns the number of periods dispatched.
func (r *Run) Periods() int {
	return len(r.Coverage)
}

// Active returns the results with non-zero production, in engine order.
func (r *Run) Active() []model.OptimizationResult {
	out := make([]model.OptimizationResult, 0, len(r.Results))
	for _, res := range r.Results {
		if !res.Idle() {
			out = append(out, res)
		}
	}
	return out
}
