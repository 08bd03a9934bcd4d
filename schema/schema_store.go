package schema

import "time"

// MetalStandard represents a row of the metal standards table.
type MetalStandard struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"metal_name"`
	Limit        float64 `json:"permissible_limit"`
	Unit         string  `json:"unit"`
	StandardType string  `json:"standard_type"`
	Version      int     `json:"version"`
}

// WeightingScheme represents a row of the weighting schemes table.
type WeightingScheme struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Weights     Weights `json:"weights"`
	IsDefault   bool    `json:"is_default"`
}

// RunRecord represents a row from the hmpi_calculation_runs table.
type RunRecord struct {
	RunID            int64
	SampleID         string
	SampleName       *string
	Location         *string
	CalculatedAt     time.Time
	Scheme           *string
	StandardsVersion int32
	Classification   string
	Overall          string
	Concentrations   string // JSON object of symbol -> mg/L
	Violations       string // JSON array of violation strings
	Intermediates    *string
	SampleMeta       *string // JSON of the sample metadata
}

// IndexResultRecord represents a row from the hmpi_index_results table.
type IndexResultRecord struct {
	RunID          int64
	IndexName      string
	Metal          string
	Value          *float64 // NULL when the index was undefined
	Classification string
	Contributing   int32
	Formula        string
}

// RunDetail is a stored run with everything a report needs.
type RunDetail struct {
	Run       RunRecord
	Sample    Sample
	Result    SampleResult
	Standards Standards
	Units     map[string]string
}

// RunStatus represents the status of the run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalSamples  int              `json:"total_samples"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
