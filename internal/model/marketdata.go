package model

import (
	"math"
	"time"
)

// MarketCondition is one period of the forecast: the heat that must be
// supplied and the electricity price that applies while doing so.
// Periods are consumed in input order and are never re-sorted.
type MarketCondition struct {
	TimeFrom time.Time `json:"time_from" xml:"TimeFrom"`
	TimeTo   time.Time `json:"time_to" xml:"TimeTo"`

	// HeatDemand in MWh(th). Zero or negative means nothing to produce.
	HeatDemand float64 `json:"heat_demand" xml:"HeatDemand"`
	// ElectricityPrice in currency per MWh(e).
	ElectricityPrice float64 `json:"electricity_price" xml:"ElectricityPrice"`
}

func (m MarketCondition) Duration() time.Duration {
	return m.TimeTo.Sub(m.TimeFrom)
}

func (m MarketCondition) DurationHours() float64 {
	return m.Duration().Hours()
}

// MarketSeries matches the JSON envelope used by market data files and the
// market data HTTP endpoint.
//
// Example:
//
//	{
//	  "status_code": 200,
//	  "data": [ ... ]
//	}
type MarketSeries struct {
	StatusCode int               `json:"status_code,omitempty"`
	Data       []MarketCondition `json:"data"`
}

// ValidatePeriods rejects non-finite demand or price values. Period bounds and
// ordering are left to the data source.
func ValidatePeriods(periods []MarketCondition) error {
	for i, p := range periods {
		if math.IsNaN(p.HeatDemand) || math.IsInf(p.HeatDemand, 0) {
			return &InvalidPeriodError{Index: i, Field: "heat_demand", Value: p.HeatDemand}
		}
		if math.IsNaN(p.ElectricityPrice) || math.IsInf(p.ElectricityPrice, 0) {
			return &InvalidPeriodError{Index: i, Field: "electricity_price", Value: p.ElectricityPrice}
		}
	}
	return nil
}
