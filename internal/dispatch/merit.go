package dispatch

import (
	"sort"

	"heat-dispatch/internal/model"
)

// RankedUnit is a unit with its net cost at a given electricity price.
type RankedUnit struct {
	Unit    model.ProductionUnit
	NetCost float64
}

// MeritOrder ranks units ascending by net cost at the given electricity price.
// Units with equal net cost keep their catalog order.
func MeritOrder(units []model.ProductionUnit, electricityPrice float64) []RankedUnit {
	out := make([]RankedUnit, len(units))
	for i, u := range units {
		out[i] = RankedUnit{Unit: u, NetCost: u.NetCost(electricityPrice)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetCost < out[j].NetCost
	})
	return out
}
