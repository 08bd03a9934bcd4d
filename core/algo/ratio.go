package algo

import (
	"math"

	"github.com/hydrolab/hmpi/schema"
)

// ratios collects Ci/Si for metals with a usable standard and a finite ratio.
// When positiveOnly is set, zero ratios are skipped as well.
func ratios(conc schema.Concentrations, std schema.Standards, positiveOnly bool) []float64 {
	var out []float64
	for _, symbol := range symbols(conc) {
		r, ok := metalRatio(conc, std, symbol)
		if !ok || (positiveOnly && r <= 0) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SubIndex returns Ci/Si for one metal, or NaN when either value is missing or unusable
// or the ratio overflows.
func SubIndex(metal string, conc schema.Concentrations, std schema.Standards) float64 {
	r, ok := metalRatio(conc, std, metal)
	if !ok {
		return math.NaN()
	}
	return r
}

// HEI computes the Heavy-metal Evaluation Index, Σ Ci/Si.
func HEI(conc schema.Concentrations, std schema.Standards) float64 {
	rs := ratios(conc, std, false)
	if len(rs) == 0 {
		return math.NaN()
	}
	return sum(rs)
}

// HMPI is the arithmetic mean of Ci/Si over metals with a positive reading.
// See HMI for the geometric reading of the same ratios.
func HMPI(conc schema.Concentrations, std schema.Standards) float64 {
	return mean(ratios(conc, std, true))
}

// HCI is the mean of percentage ratios (Ci/Si)*100 over metals with a positive reading.
func HCI(conc schema.Concentrations, std schema.Standards) float64 {
	rs := ratios(conc, std, true)
	for i := range rs {
		rs[i] *= 100
	}
	return mean(rs)
}

// PI is the metal-count normalized mean of Ci/Si over metals with a positive reading.
func PI(conc schema.Concentrations, std schema.Standards) float64 {
	return mean(ratios(conc, std, true))
}

// MI is the Metal Index: mean of Ci/Si over every metal with a standard, zero readings included.
func MI(conc schema.Concentrations, std schema.Standards) float64 {
	return mean(ratios(conc, std, false))
}

// HMI is the geometric mean of Ci/Si over metals with a positive reading.
func HMI(conc schema.Concentrations, std schema.Standards) float64 {
	return geometricMean(ratios(conc, std, true))
}
