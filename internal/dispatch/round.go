package dispatch

import (
	"math"

	"github.com/shopspring/decimal"
)

// Decimals is the precision of every numeric field in a result record.
const Decimals = 2

// Round2 rounds half away from zero to two decimals. The value is taken at its
// shortest decimal representation first, so 2.675 rounds to 2.68 even though
// its binary value is slightly below. Negative zero comes back as zero.
// NaN and infinities are returned unchanged.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(Decimals).Float64()
	return f
}
