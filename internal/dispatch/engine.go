package dispatch

import (
	"errors"
	"fmt"
	"math"

	"heat-dispatch/internal/model"
)

// ErrNoResults is returned when an optimization yields an empty result
// sequence, which only happens when the catalog or the period series is empty.
var ErrNoResults = errors.New("optimization produced no results")

type Engine struct{}

func New() *Engine { return &Engine{} }

// Optimize dispatches units against each period in input order and returns
// one record per (period, unit) pair: period-major, merit order within a
// period. Units that are not needed still get a zero-production record.
//
// Optimize is a pure function of its inputs; it may be called concurrently as
// long as the caller does not mutate units or periods during the call.
func Optimize(units []model.ProductionUnit, periods []model.MarketCondition) ([]model.OptimizationResult, error) {
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return nil, err
		}
	}
	if err := model.ValidatePeriods(periods); err != nil {
		return nil, err
	}

	results := make([]model.OptimizationResult, 0, len(units)*len(periods))
	for _, p := range periods {
		var err error
		if results, err = dispatchPeriod(results, units, p); err != nil {
			return nil, err
		}
	}

	if len(results) == 0 {
		switch {
		case len(units) == 0:
			return nil, fmt.Errorf("%w: %w", ErrNoResults, model.ErrEmptyCatalog)
		case len(periods) == 0:
			return nil, fmt.Errorf("%w: %w", ErrNoResults, model.ErrEmptyPeriods)
		default:
			return nil, ErrNoResults
		}
	}
	return results, nil
}

// dispatchPeriod appends the records of a single period to dst. The walk
// never stops early: once demand is met every further unit records zero.
// Finite inputs whose products overflow fail with *model.InvalidUnitError.
func dispatchPeriod(dst []model.OptimizationResult, units []model.ProductionUnit, p model.MarketCondition) ([]model.OptimizationResult, error) {
	remaining := p.HeatDemand
	for _, r := range MeritOrder(units, p.ElectricityPrice) {
		u := r.Unit

		amount := 0.0
		if remaining > 0 {
			amount = math.Min(u.MaxHeat, remaining)
		}
		electricity := amount / u.MaxHeat * u.MaxElectricity
		costs := amount*u.ProductionCost - electricity*p.ElectricityPrice
		primary := amount * u.GasConsumption
		co2 := amount * u.CO2Emissions

		for _, f := range []struct {
			name  string
			v     float64
			input float64
		}{
			{"max_electricity", electricity, u.MaxElectricity},
			{"production_cost", costs, u.ProductionCost},
			{"gas_consumption", primary, u.GasConsumption},
			{"co2_emissions", co2, u.CO2Emissions},
		} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return nil, &model.InvalidUnitError{Unit: u.Name, Field: f.name, Value: f.input, Reason: "overflows"}
			}
		}

		dst = append(dst, model.OptimizationResult{
			UnitName: u.Name,
			TimeFrom: p.TimeFrom,
			TimeTo:   p.TimeTo,

			ProducedHeat:             Round2(amount),
			ElectricityProduced:      Round2(electricity),
			PrimaryEnergyConsumption: Round2(primary),
			Costs:                    Round2(costs),
			CO2Emissions:             Round2(co2),
		})
		remaining -= amount
	}
	return dst, nil
}

// Run executes Optimize and derives per-period coverage and run totals from
// the result sequence. Like Optimize it performs no I/O.
func (e *Engine) Run(units []model.ProductionUnit, periods []model.MarketCondition) (*Run, error) {
	results, err := Optimize(units, periods)
	if err != nil {
		return nil, err
	}

	run := &Run{
		Results:  results,
		Coverage: make([]PeriodCoverage, 0, len(periods)),
		Units:    len(units),
	}
	n := len(units)
	for i, p := range periods {
		cov := PeriodCoverage{
			TimeFrom: p.TimeFrom,
			TimeTo:   p.TimeTo,
			Demand:   p.HeatDemand,
		}
		for _, r := range results[i*n : (i+1)*n] {
			cov.Produced += r.ProducedHeat
			run.Totals.add(r)
		}
		cov.Produced = Round2(cov.Produced)
		if p.HeatDemand > cov.Produced {
			cov.Shortfall = Round2(p.HeatDemand - cov.Produced)
		}
		run.Totals.Shortfall += cov.Shortfall
		run.Coverage = append(run.Coverage, cov)
	}
	run.Totals.round()
	return run, nil
}
