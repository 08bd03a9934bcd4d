// Package schema has models, reference tables and constants for all parts of hmpi.
package schema

import (
	"encoding/json"
	"math"
	"time"
)

// Sample is one water sample with its site metadata and metal readings.
type Sample struct {
	ID             string         `json:"sample_id"`
	Name           string         `json:"sample_name,omitempty"`
	Location       string         `json:"location_name,omitempty"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	SamplingDate   *time.Time     `json:"sampling_date,omitempty"`
	PH             *float64       `json:"ph_value,omitempty"`
	TemperatureC   *float64       `json:"temperature_celsius,omitempty"`
	DepthMeters    *float64       `json:"depth_meters,omitempty"`
	Method         string         `json:"collection_method,omitempty"`
	Concentrations Concentrations `json:"metal_concentrations"`
}

// IndexValue is one computed index. Value is NaN when no metal contributed.
type IndexValue struct {
	Name           IndexName `json:"name"`
	Metal          string    `json:"metal,omitempty"` // set for per-metal sub-indices
	Value          float64   `json:"value"`
	Classification Category  `json:"classification"`
	Formula        string    `json:"formula"`
	Contributing   int       `json:"contributing"`
}

// Defined reports whether the index had at least one contributing metal.
func (v IndexValue) Defined() bool {
	return !math.IsNaN(v.Value) && !math.IsInf(v.Value, 0)
}

// MarshalJSON renders an undefined value as null.
func (v IndexValue) MarshalJSON() ([]byte, error) {
	type alias IndexValue
	out := struct {
		alias
		Value *float64 `json:"value"`
	}{alias: alias(v)}
	if v.Defined() {
		out.Value = &v.Value
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null value back as NaN.
func (v *IndexValue) UnmarshalJSON(data []byte) error {
	type alias IndexValue
	in := struct {
		*alias
		Value *float64 `json:"value"`
	}{alias: (*alias)(v)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Value == nil {
		v.Value = math.NaN()
	} else {
		v.Value = *in.Value
	}
	return nil
}

// MetalContribution holds the per-metal intermediate values behind a sample's indices.
type MetalContribution struct {
	Symbol              string  `json:"symbol"`
	Concentration       float64 `json:"concentration"`
	Standard            float64 `json:"standard"`
	Ideal               float64 `json:"ideal"`
	Ratio               float64 `json:"ratio"`                // Ci / Si
	QualityRating       float64 `json:"quality_rating"`       // HPI Qi, 0 when HPI excludes the metal
	Weight              float64 `json:"weight"`               // normalized HPI Wi, 0 when excluded
	ContaminationFactor float64 `json:"contamination_factor"` // Ci / Refi, 0 without a reference
	Excess              float64 `json:"excess"`               // max(0, Ci/Si - 1)
	Exceeds             bool    `json:"exceeds"`
}

// SampleResult is the combined result record of one aggregator run.
type SampleResult struct {
	SampleID       string              `json:"sample_id"`
	Indices        []IndexValue        `json:"results"`
	Classification Category            `json:"classification"`         // HPI band
	Overall        Category            `json:"overall_classification"` // worst defined band
	Violations     []string            `json:"threshold_violations"`
	Intermediates  []MetalContribution `json:"intermediate_values,omitempty"`
}

// Index returns the first entry with the given name.
func (r SampleResult) Index(name IndexName) (IndexValue, bool) {
	for _, v := range r.Indices {
		if v.Name == name {
			return v, true
		}
	}
	return IndexValue{}, false
}

// Value returns the value of an index, or NaN when it was not computed.
func (r SampleResult) Value(name IndexName) float64 {
	if v, ok := r.Index(name); ok {
		return v.Value
	}
	return math.NaN()
}
