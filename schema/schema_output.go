package schema

import "math"

// EnrichedSampleResult adds presentation data to a SampleResult.
type EnrichedSampleResult struct {
	Rank int     `json:"rank"`
	HPI  float64 `json:"-"`
	SampleResult
}

// BatchSummary counts samples per overall category.
type BatchSummary struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
	Violating  int              `json:"samples_with_violations"`
}

// EnrichSamples adds a 1-based rank to results that are already sorted.
func EnrichSamples(results []SampleResult) []EnrichedSampleResult {
	output := make([]EnrichedSampleResult, len(results))
	for i, r := range results {
		output[i] = EnrichedSampleResult{
			Rank:         i + 1,
			HPI:          r.Value(HPIIndex),
			SampleResult: r,
		}
	}
	return output
}

// Summarize counts the overall categories of a batch.
func Summarize(results []SampleResult) BatchSummary {
	s := BatchSummary{Total: len(results), ByCategory: make(map[Category]int)}
	for _, r := range results {
		s.ByCategory[r.Overall]++
		if len(r.Violations) > 0 {
			s.Violating++
		}
	}
	return s
}

// CalculateRequest is the input of a single-sample calculation.
// JSON field names follow the calculation service payload.
type CalculateRequest struct {
	SampleID        string         `json:"sampleId"`
	Concentrations  Concentrations `json:"metalConcentrations"`
	WeightingScheme string         `json:"weightingSchemeId,omitempty"`
	Indices         []string       `json:"indicesTypes,omitempty"`
}

// CalculateResponse is the output of a single-sample calculation.
type CalculateResponse struct {
	RunID                 int64               `json:"calculationRunId,omitempty"`
	SampleID              string              `json:"sampleId"`
	Results               []IndexValue        `json:"results"`
	Classification        Category            `json:"classification"`
	OverallClassification Category            `json:"overallClassification"`
	ThresholdViolations   []string            `json:"thresholdViolations"`
	IntermediateValues    []MetalContribution `json:"intermediateValues,omitempty"`
}

// NewCalculateResponse wraps an aggregator result.
func NewCalculateResponse(runID int64, r SampleResult) CalculateResponse {
	return CalculateResponse{
		RunID:                 runID,
		SampleID:              r.SampleID,
		Results:               r.Indices,
		Classification:        r.Classification,
		OverallClassification: r.Overall,
		ThresholdViolations:   r.Violations,
		IntermediateValues:    r.Intermediates,
	}
}

// MetalReference is one row of the effective reference tables.
type MetalReference struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Limit     float64  `json:"permissible_limit"`
	Unit      string   `json:"unit"`
	Ideal     float64  `json:"ideal"`
	Reference *float64 `json:"reference,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
}

// BandView is a JSON-safe band: Below is nil for the open-ended top band.
type BandView struct {
	Below    *float64 `json:"below,omitempty"`
	Category Category `json:"category"`
}

// IndexInfo documents one index.
type IndexInfo struct {
	Name        IndexName  `json:"name"`
	Description string     `json:"description"`
	Formula     string     `json:"formula"`
	Bands       []BandView `json:"bands"`
}

// StandardsView is everything the standards command displays.
type StandardsView struct {
	Scheme  string           `json:"scheme,omitempty"`
	Metals  []MetalReference `json:"metals"`
	Indices []IndexInfo      `json:"indices"`
}

// NewIndexInfo collects the description, formula and bands of an index.
func NewIndexInfo(index IndexName) IndexInfo {
	table := GetBands(index)
	bands := make([]BandView, len(table))
	for i, b := range table {
		bands[i] = BandView{Category: b.Category}
		if !math.IsInf(b.Upper, 1) {
			upper := b.Upper
			bands[i].Below = &upper
		}
	}
	return IndexInfo{
		Name:        index,
		Description: Description(index),
		Formula:     Formula(index),
		Bands:       bands,
	}
}
