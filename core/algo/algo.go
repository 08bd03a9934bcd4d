// Package algo holds the pollution index functions and the classifier.
//
// Every function is pure: it reads the caller's maps, never stores or mutates them,
// and iterates metals in sorted order so results do not depend on map order.
// An index with no contributing metal returns NaN.
package algo

import (
	"maps"
	"math"
	"slices"

	"github.com/hydrolab/hmpi/schema"
)

// symbols returns the metal symbols of a concentration map in sorted order.
func symbols(conc schema.Concentrations) []string {
	return slices.Sorted(maps.Keys(conc))
}

// reading returns a concentration if it is present and valid.
func reading(conc schema.Concentrations, symbol string) (float64, bool) {
	c, ok := conc[symbol]
	if !ok || !schema.ValidReading(c) {
		return 0, false
	}
	return c, true
}

// limit returns a standard (or reference) value if it is present, finite and strictly positive.
func limit(std map[string]float64, symbol string) (float64, bool) {
	s, ok := std[symbol]
	if !ok || math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return 0, false
	}
	return s, true
}

// ratio is the single expression shared by every Ci/Si computation.
func ratio(c, s float64) float64 {
	return c / s
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// metalRatio returns Ci/Si for one metal when the reading and the standard are usable and
// the quotient is representable. An overflowing quotient makes the metal unusable.
func metalRatio(conc schema.Concentrations, std map[string]float64, symbol string) (float64, bool) {
	c, ok := reading(conc, symbol)
	if !ok {
		return 0, false
	}
	s, ok := limit(std, symbol)
	if !ok {
		return 0, false
	}
	r := ratio(c, s)
	if !finite(r) {
		return 0, false
	}
	return r, true
}

// sum adds non-negative values, saturating at the largest finite float64.
func sum(values []float64) float64 {
	acc := 0.0
	for _, v := range values {
		acc += v
	}
	if math.IsInf(acc, 1) {
		return math.MaxFloat64
	}
	return acc
}

// mean returns the arithmetic mean, or NaN for an empty slice.
// Each deviation from the first value is scaled before accumulating, so finite inputs
// give a finite mean and equal values reproduce exactly.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	n := float64(len(values))
	base := values[0]
	acc := 0.0
	for _, v := range values {
		acc += (v - base) / n
	}
	return base + acc
}

// geometricMean returns exp(mean(ln v)) over strictly positive values, or NaN when there are none.
func geometricMean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	logSum := 0.0
	for _, v := range values {
		logSum += math.Log(v)
	}
	if g := math.Exp(logSum / float64(len(values))); !math.IsInf(g, 1) {
		return g
	}
	return math.MaxFloat64
}

// weightedMean returns Σ(v*w)/Σw, or NaN when there is nothing to weigh.
// Weights that do not sum to a positive finite total fall back to equal shares.
// Deviations are taken from the first value so that equal values reproduce exactly.
func weightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	equal := total <= 0 || !finite(total)
	base := values[0]
	acc := 0.0
	for i, v := range values {
		share := 1 / float64(len(values))
		if !equal {
			share = weights[i] / total
		}
		acc += (v - base) * share
	}
	return base + acc
}
