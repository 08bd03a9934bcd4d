package algo

import (
	"math"

	"github.com/hydrolab/hmpi/schema"
)

// Rating is one metal's term in an HPI computation.
type Rating struct {
	Symbol        string
	Concentration float64
	Standard      float64
	Ideal         float64
	QualityRating float64 // Qi
	Weight        float64 // normalized Wi
}

// HPI computes the Heavy-metal Pollution Index.
//
// For each contributing metal Qi = |Ci - Ii| / (Si - Ii) * 100 and wi = 1/Si, or the
// scheme weight when weights is non-nil. HPI = Σ Qi*Wi with Wi = wi / Σw.
func HPI(conc schema.Concentrations, std schema.Standards, ideal schema.IdealValues, weights schema.Weights) float64 {
	v, _ := HPIDetail(conc, std, ideal, weights)
	return v
}

// HPIDetail computes HPI and returns the per-metal ratings it used.
//
// A metal is excluded when its reading or standard is unusable, when the ideal value is
// non-finite or not below the standard, when its rating overflows, or when a scheme is
// given without a positive weight for it. If the weights cannot be normalized, every
// metal gets an equal share.
func HPIDetail(conc schema.Concentrations, std schema.Standards, ideal schema.IdealValues, weights schema.Weights) (float64, []Rating) {
	var terms []Rating
	var raw []float64
	totalWeight := 0.0

	for _, symbol := range symbols(conc) {
		c, ok := reading(conc, symbol)
		if !ok {
			continue
		}
		s, ok := limit(std, symbol)
		if !ok {
			continue
		}
		i := ideal[symbol] // missing means 0
		if math.IsNaN(i) || math.IsInf(i, 0) || s <= i {
			continue
		}

		w := 1 / s
		if weights != nil {
			sw, ok := weights[symbol]
			if !ok || math.IsNaN(sw) || math.IsInf(sw, 0) || sw <= 0 {
				continue
			}
			w = sw
		}

		q := math.Abs(c-i) / (s - i) * 100
		if !finite(q) {
			continue
		}

		terms = append(terms, Rating{
			Symbol:        symbol,
			Concentration: c,
			Standard:      s,
			Ideal:         i,
			QualityRating: q,
		})
		raw = append(raw, w)
		totalWeight += w
	}

	if len(terms) == 0 {
		return math.NaN(), nil
	}

	// Accumulate deviations from the first rating so that equal ratings reproduce exactly.
	base := terms[0].QualityRating
	hpi := base
	for k := range terms {
		if totalWeight > 0 && !math.IsInf(totalWeight, 0) {
			terms[k].Weight = raw[k] / totalWeight
		} else {
			terms[k].Weight = 1 / float64(len(terms))
		}
		hpi += (terms[k].QualityRating - base) * terms[k].Weight
	}
	return hpi, terms
}

// HPISimple computes the percent-ratio HPI variant: Σ(Qi*wi) / Σwi with Qi = Ci/Si * 100.
// Weights default to 1/Si; with a scheme, metals lacking a positive weight are excluded.
func HPISimple(conc schema.Concentrations, std schema.Standards, weights schema.Weights) float64 {
	var qs, ws []float64
	for _, symbol := range symbols(conc) {
		c, ok := reading(conc, symbol)
		if !ok {
			continue
		}
		s, ok := limit(std, symbol)
		if !ok {
			continue
		}
		w := 1 / s
		if weights != nil {
			sw, ok := weights[symbol]
			if !ok || math.IsNaN(sw) || math.IsInf(sw, 0) || sw <= 0 {
				continue
			}
			w = sw
		}
		q := ratio(c, s) * 100
		if !finite(q) {
			continue
		}
		qs = append(qs, q)
		ws = append(ws, w)
	}
	return weightedMean(qs, ws)
}
