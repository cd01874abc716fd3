package model

import (
	"math"
	"strings"
)

// ProductionUnit defines the technical and economic parameters of one heat
// production unit. Units:
// - MaxHeat: MWh(th) per period
// - ProductionCost: currency per MWh(th)
// - CO2Emissions: kg per MWh(th)
// - GasConsumption: primary energy per MWh(th)
// - MaxElectricity: MWh(e) at full heat output (negative = consumption)
type ProductionUnit struct {
	Name           string  `json:"name" yaml:"name" xml:"Name"`
	ImagePath      string  `json:"image_path,omitempty" yaml:"image_path,omitempty" xml:"ImagePath,omitempty"`
	MaxHeat        float64 `json:"max_heat" yaml:"max_heat" xml:"MaxHeat"`
	ProductionCost float64 `json:"production_cost" yaml:"production_cost" xml:"ProductionCost"`
	CO2Emissions   float64 `json:"co2_emissions" yaml:"co2_emissions" xml:"CO2Emission"`
	GasConsumption float64 `json:"gas_consumption" yaml:"gas_consumption" xml:"GasConsumption"`
	MaxElectricity float64 `json:"max_electricity" yaml:"max_electricity" xml:"MaxElectricity"`
}

func (u ProductionUnit) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return &InvalidUnitError{Unit: u.Name, Field: "name", Reason: "must not be empty"}
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"max_heat", u.MaxHeat},
		{"production_cost", u.ProductionCost},
		{"co2_emissions", u.CO2Emissions},
		{"gas_consumption", u.GasConsumption},
		{"max_electricity", u.MaxElectricity},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidUnitError{Unit: u.Name, Field: f.name, Value: f.v, Reason: "must be finite"}
		}
	}
	if u.MaxHeat <= 0 {
		return &InvalidUnitError{Unit: u.Name, Field: "max_heat", Value: u.MaxHeat, Reason: "must be > 0"}
	}
	return nil
}

// ElectricityRatio is the electricity produced (or consumed, if negative) per
// MWh of heat. It is assumed constant under partial load.
func (u ProductionUnit) ElectricityRatio() float64 {
	return u.MaxElectricity / u.MaxHeat
}

// NetCost is the per-MWh(th) production cost offset by the value of the
// co-produced electricity at the given price.
func (u ProductionUnit) NetCost(electricityPrice float64) float64 {
	return u.ProductionCost - u.ElectricityRatio()*electricityPrice
}

func (u ProductionUnit) Role() Role {
	return RoleFromElectricity(u.MaxElectricity)
}
