package analysis

import (
	"sort"
)

// RankByCost orders summaries by average cost per MWh, cheapest first.
// Idle units sort last; ties keep input order.
func RankByCost(summaries []UnitSummary) []UnitSummary {
	out := append([]UnitSummary(nil), summaries...)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].ProducedHeat > 0, out[j].ProducedHeat > 0
		if ai != aj {
			return ai
		}
		return out[i].AvgCostPerMWh < out[j].AvgCostPerMWh
	})
	return out
}
