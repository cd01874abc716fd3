package model

import "time"

// OptimizationResult is the dispatch of one unit in one period. All numeric
// fields are rounded to two decimals by the engine.
type OptimizationResult struct {
	UnitName string    `json:"unit_name" xml:"UnitName"`
	TimeFrom time.Time `json:"time_from" xml:"TimeFrom"`
	TimeTo   time.Time `json:"time_to" xml:"TimeTo"`

	ProducedHeat float64 `json:"produced_heat" xml:"ProducedHeat"`
	// ElectricityProduced is signed: negative values are consumption.
	ElectricityProduced      float64 `json:"electricity_produced" xml:"ElectricityProduced"`
	PrimaryEnergyConsumption float64 `json:"primary_energy_consumption" xml:"PrimaryEnergyConsumption"`
	// Costs are net of electricity revenue (or cost, for consumers).
	Costs        float64 `json:"costs" xml:"Costs"`
	CO2Emissions float64 `json:"co2_emissions" xml:"CO2Emissions"`
}

// Idle reports whether the record carries nothing at all. A sub-cent
// dispatch rounds ProducedHeat to zero but can still carry costs and
// emissions, so every numeric field is checked.
func (r OptimizationResult) Idle() bool {
	return r.ProducedHeat == 0 &&
		r.ElectricityProduced == 0 &&
		r.PrimaryEnergyConsumption == 0 &&
		r.Costs == 0 &&
		r.CO2Emissions == 0
}
