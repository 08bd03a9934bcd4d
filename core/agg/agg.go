// Package agg runs a set of pollution indices over one sample and assembles the result record.
package agg

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/hydrolab/hmpi/core/algo"
	"github.com/hydrolab/hmpi/schema"
)

// Params is the full configuration of one aggregator run.
type Params struct {
	Indices       []schema.IndexName
	Standards     schema.Standards
	IdealValues   schema.IdealValues
	Reference     schema.Standards // PLI background values; nil falls back to Standards
	Weights       schema.Weights   // HPI weighting scheme; nil means 1/Si
	Units         map[string]string
	Intermediates bool
}

// DefaultParams returns the default index set against the reference tables.
func DefaultParams() Params {
	return Params{
		Indices:     slices.Clone(schema.DefaultIndices),
		Standards:   schema.DefaultStandards(),
		IdealValues: schema.DefaultIdealValues(),
	}
}

// Validate rejects configuration that cannot describe a calculation at all.
// Per-metal problems such as a zero standard are not errors; those metals are excluded.
func (p Params) Validate() error {
	if len(p.Indices) == 0 {
		return fmt.Errorf("%w: no indices requested", schema.ErrInvalidInput)
	}
	for _, idx := range p.Indices {
		if !slices.Contains(schema.AllIndices, idx) {
			return fmt.Errorf("%w: %q", schema.ErrUnknownIndex, idx)
		}
	}
	if p.Standards == nil {
		return fmt.Errorf("%w: standards table is required", schema.ErrInvalidInput)
	}
	return nil
}

func (p Params) reference() schema.Standards {
	if p.Reference != nil {
		return p.Reference
	}
	return p.Standards
}

// Calculate runs every requested index over conc. Each index is computed independently, so
// an undefined index never prevents the others. Entries follow the canonical index order.
// The caller fills in SampleID.
func Calculate(conc schema.Concentrations, p Params) schema.SampleResult {
	symbols := slices.Sorted(maps.Keys(conc))
	hpi, ratings := algo.HPIDetail(conc, p.Standards, p.IdealValues, p.Weights)

	result := schema.SampleResult{
		Indices:        []schema.IndexValue{},
		Classification: algo.ClassifyHPI(hpi),
		Violations:     ThresholdViolations(conc, p.Standards, p.Units),
	}

	for _, idx := range schema.AllIndices {
		if !slices.Contains(p.Indices, idx) {
			continue
		}
		if idx == schema.SIIndex {
			for _, symbol := range symbols {
				result.Indices = append(result.Indices, subIndexValue(symbol, conc, p.Standards))
			}
			continue
		}
		var v float64
		if idx == schema.HPIIndex {
			v = hpi
		} else {
			v = compute(idx, conc, p)
		}
		result.Indices = append(result.Indices, schema.IndexValue{
			Name:           idx,
			Value:          v,
			Classification: algo.Classify(idx, v),
			Formula:        schema.Formula(idx),
			Contributing:   contributing(idx, symbols, conc, p, len(ratings)),
		})
	}

	categories := make([]schema.Category, len(result.Indices))
	for i, v := range result.Indices {
		categories[i] = v.Classification
	}
	result.Overall = algo.Worst(categories...)

	if p.Intermediates {
		result.Intermediates = intermediates(symbols, conc, p, ratings)
	}
	return result
}

func compute(idx schema.IndexName, conc schema.Concentrations, p Params) float64 {
	switch idx {
	case schema.HEIIndex:
		return algo.HEI(conc, p.Standards)
	case schema.HMPIIndex:
		return algo.HMPI(conc, p.Standards)
	case schema.HCIIndex:
		return algo.HCI(conc, p.Standards)
	case schema.PIIndex:
		return algo.PI(conc, p.Standards)
	case schema.PLIIndex:
		return algo.PLI(conc, p.reference())
	case schema.CdIndex:
		return algo.Cd(conc, p.Standards)
	case schema.HPISimpleIndex:
		return algo.HPISimple(conc, p.Standards, p.Weights)
	case schema.MIIndex:
		return algo.MI(conc, p.Standards)
	case schema.HMIIndex:
		return algo.HMI(conc, p.Standards)
	default:
		return math.NaN()
	}
}

func subIndexValue(symbol string, conc schema.Concentrations, std schema.Standards) schema.IndexValue {
	v := algo.SubIndex(symbol, conc, std)
	n := 0
	if !math.IsNaN(v) {
		n = 1
	}
	return schema.IndexValue{
		Name:           schema.SIIndex,
		Metal:          symbol,
		Value:          v,
		Classification: algo.Classify(schema.SIIndex, v),
		Formula:        schema.Formula(schema.SIIndex),
		Contributing:   n,
	}
}

// contributing counts the metals an index used, mirroring the filters in core/algo.
func contributing(idx schema.IndexName, symbols []string, conc schema.Concentrations, p Params, hpiTerms int) int {
	if idx == schema.HPIIndex {
		return hpiTerms
	}
	n := 0
	for _, symbol := range symbols {
		if idx == schema.PLIIndex {
			if cf := algo.ContaminationFactor(symbol, conc, p.reference()); !math.IsNaN(cf) && cf > 0 {
				n++
			}
			continue
		}
		r := algo.SubIndex(symbol, conc, p.Standards)
		if math.IsNaN(r) {
			continue
		}
		switch idx {
		case schema.HMPIIndex, schema.HCIIndex, schema.PIIndex, schema.HMIIndex:
			if r > 0 {
				n++
			}
		case schema.HPISimpleIndex:
			if p.Weights == nil || positive(p.Weights[symbol]) {
				n++
			}
		default:
			n++
		}
	}
	return n
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// intermediates lists the per-metal values behind the indices for metals with a usable standard.
func intermediates(symbols []string, conc schema.Concentrations, p Params, ratings []algo.Rating) []schema.MetalContribution {
	bySymbol := make(map[string]algo.Rating, len(ratings))
	for _, r := range ratings {
		bySymbol[r.Symbol] = r
	}

	out := []schema.MetalContribution{}
	for _, symbol := range symbols {
		r := algo.SubIndex(symbol, conc, p.Standards)
		if math.IsNaN(r) {
			continue
		}
		c := conc[symbol]
		s := p.Standards[symbol]
		mc := schema.MetalContribution{
			Symbol:        symbol,
			Concentration: c,
			Standard:      s,
			Ideal:         p.IdealValues[symbol],
			Ratio:         r,
			Excess:        algo.Excess(r),
			Exceeds:       c > s,
		}
		if math.IsNaN(mc.Ideal) || math.IsInf(mc.Ideal, 0) {
			mc.Ideal = 0
		}
		if rating, ok := bySymbol[symbol]; ok {
			mc.QualityRating = rating.QualityRating
			mc.Weight = rating.Weight
		}
		if cf := algo.ContaminationFactor(symbol, conc, p.reference()); !math.IsNaN(cf) {
			mc.ContaminationFactor = cf
		}
		out = append(out, mc)
	}
	return out
}
