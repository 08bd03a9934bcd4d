package algo

import (
	"math"

	"github.com/hydrolab/hmpi/schema"
)

// ContaminationFactor returns Ci/Refi for one metal, or NaN without a usable reading or
// reference, or when the factor overflows.
func ContaminationFactor(metal string, conc schema.Concentrations, ref schema.Standards) float64 {
	cf, ok := metalRatio(conc, ref, metal)
	if !ok {
		return math.NaN()
	}
	return cf
}

// PLI computes the Pollution Load Index, the geometric mean of contamination factors
// CFi = Ci/Refi over metals with CFi > 0. It sums logs before exponentiating so that many
// factors or extreme ratios do not overflow.
func PLI(conc schema.Concentrations, ref schema.Standards) float64 {
	var cfs []float64
	for _, symbol := range symbols(conc) {
		cf := ContaminationFactor(symbol, conc, ref)
		if math.IsNaN(cf) || cf <= 0 {
			continue
		}
		cfs = append(cfs, cf)
	}
	return geometricMean(cfs)
}

// Cd computes the Degree of Contamination, Σ max(0, Ci/Si - 1).
// Metals within their limit contribute zero, so the result is never negative.
func Cd(conc schema.Concentrations, std schema.Standards) float64 {
	rs := ratios(conc, std, false)
	if len(rs) == 0 {
		return math.NaN()
	}
	excess := make([]float64, len(rs))
	for i, r := range rs {
		excess[i] = Excess(r)
	}
	return sum(excess)
}

// Excess is the positive part of a ratio above its limit.
func Excess(r float64) float64 {
	return math.Max(0, r-1)
}
