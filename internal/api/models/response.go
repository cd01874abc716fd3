package models

import (
	"time"

	"heat-dispatch/internal/analysis"
	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/model"
)

// UnitsResponse lists the server catalog.
type UnitsResponse struct {
	Grid      string     `json:"grid,omitempty"`
	Buildings int        `json:"buildings,omitempty"`
	Units     []UnitInfo `json:"units"`
}

type UnitInfo struct {
	Name           string     `json:"name"`
	Role           model.Role `json:"role"`
	ImagePath      string     `json:"image_path,omitempty"`
	MaxHeat        float64    `json:"max_heat"`
	ProductionCost float64    `json:"production_cost"`
	CO2Emissions   float64    `json:"co2_emissions"`
	GasConsumption float64    `json:"gas_consumption"`
	MaxElectricity float64    `json:"max_electricity"`
}

func NewUnitInfo(u model.ProductionUnit) UnitInfo {
	return UnitInfo{
		Name:           u.Name,
		Role:           u.Role(),
		ImagePath:      u.ImagePath,
		MaxHeat:        u.MaxHeat,
		ProductionCost: u.ProductionCost,
		CO2Emissions:   u.CO2Emissions,
		GasConsumption: u.GasConsumption,
		MaxElectricity: u.MaxElectricity,
	}
}

// MeritOrderResponse ranks units at one electricity price.
type MeritOrderResponse struct {
	ElectricityPrice float64      `json:"electricity_price"`
	Units            []RankedUnit `json:"units"`
}

type RankedUnit struct {
	Rank    int        `json:"rank"`
	Name    string     `json:"name"`
	Role    model.Role `json:"role"`
	NetCost float64    `json:"net_cost"`
	MaxHeat float64    `json:"max_heat"`
}

// OptimizeResponse is returned by POST /api/v1/optimize.
type OptimizeResponse struct {
	ID      string                     `json:"id,omitempty"`
	Status  string                     `json:"status"`
	Summary RunSummary                 `json:"summary"`
	Units   []analysis.UnitSummary     `json:"units"`
	Results []model.OptimizationResult `json:"results,omitempty"`
}

// RunSummary contains aggregated run figures.
type RunSummary struct {
	Periods          int                    `json:"periods"`
	Units            int                    `json:"units"`
	Window           TimeWindow             `json:"window"`
	Totals           dispatch.Totals        `json:"totals"`
	UncoveredPeriods int                    `json:"uncovered_periods"`
	Market           analysis.MarketSummary `json:"market"`
}

// TimeWindow represents a time range.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CompareResponse holds one summary per variation, in request order.
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

type ComparisonResult struct {
	Name    string       `json:"name"`
	Summary *RunSummary  `json:"summary,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// MarketResponse carries fetched periods and their statistics.
type MarketResponse struct {
	Summary analysis.MarketSummary  `json:"summary"`
	Periods []model.MarketCondition `json:"periods"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
