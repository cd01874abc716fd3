package models

import (
	"time"

	"heat-dispatch/internal/model"
)

// OptimizeRequest is the body of POST /api/v1/optimize.
// Periods are taken as given; when they are empty Market asks the server
// to fetch them from its configured market endpoint.
type OptimizeRequest struct {
	// Units are merged over the server catalog by name.
	Units   []model.ProductionUnit  `json:"units,omitempty"`
	Select  []string                `json:"select,omitempty"`
	Periods []model.MarketCondition `json:"periods,omitempty"`
	Market  *MarketWindow           `json:"market,omitempty"`
	Options OptimizeOptions         `json:"options,omitempty"`
}

// MarketWindow selects the periods fetched from the market endpoint.
type MarketWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Area string    `json:"area,omitempty"`
}

type OptimizeOptions struct {
	IncludeResults bool `json:"include_results,omitempty"`
	SkipIdle       bool `json:"skip_idle,omitempty"`
}

// CompareRequest runs several unit selections over the same periods.
type CompareRequest struct {
	Periods    []model.MarketCondition `json:"periods,omitempty"`
	Market     *MarketWindow           `json:"market,omitempty"`
	Variations []Variation             `json:"variations" binding:"required,min=1,dive"`
}

type Variation struct {
	Name   string                 `json:"name" binding:"required"`
	Units  []model.ProductionUnit `json:"units,omitempty"`
	Select []string               `json:"select,omitempty"`
}

// MarketQuery is bound from the query string of GET /api/v1/market.
type MarketQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
	Area string `form:"area"`
}
