// Package parquet provides data structures and functions for exporting stored
// calculation runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/hydrolab/hmpi/schema"
	"github.com/parquet-go/parquet-go"
)

// CalculationRun represents one calculated sample.
// This struct maps to the hmpi_calculation_runs database table.
type CalculationRun struct {
	// RunID is the unique identifier for this calculation
	RunID int64 `parquet:"run_id,snappy"`

	SampleID   string  `parquet:"sample_id,snappy"`
	SampleName *string `parquet:"sample_name,optional,snappy"`
	Location   *string `parquet:"location_name,optional,snappy"`

	// CalculatedAt is when the indices were computed (stored as TIMESTAMP with nanosecond precision)
	CalculatedAt time.Time `parquet:"calculated_at,snappy"`

	// Scheme is the weighting scheme name, when one was applied
	Scheme *string `parquet:"scheme_name,optional,snappy"`

	StandardsVersion int32 `parquet:"standards_version,snappy"`

	// Classification is the HPI band; Overall is the worst band across all indices
	Classification string `parquet:"classification,snappy"`
	Overall        string `parquet:"overall_classification,snappy"`

	// Concentrations, Violations and Intermediates are JSON-encoded
	Concentrations string  `parquet:"concentrations,snappy"`
	Violations     string  `parquet:"threshold_violations,snappy"`
	Intermediates  *string `parquet:"intermediate_values,optional,snappy"`
	SampleMeta     *string `parquet:"sample_meta,optional,snappy"`
}

// IndexResult represents one index value of a calculation run.
// This struct maps to the hmpi_index_results database table.
type IndexResult struct {
	RunID     int64  `parquet:"run_id,snappy"`
	IndexName string `parquet:"index_name,dict,snappy"`

	// Metal is set for per-metal indices such as SI, empty otherwise
	Metal string `parquet:"metal,dict,snappy"`

	// Value is null when the index was undefined for the sample
	Value *float64 `parquet:"value,optional,snappy"`

	Classification string `parquet:"classification,dict,snappy"`
	Contributing   int32  `parquet:"contributing,snappy"`
	Formula        string `parquet:"formula,dict,snappy"`
}

// writeParquet writes rows to outputPath using the schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the final row group and the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteCalculationRunsParquet writes a slice of CalculationRun structs to a Parquet file.
func WriteCalculationRunsParquet(data []CalculationRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteIndexResultsParquet writes a slice of IndexResult structs to a Parquet file.
func WriteIndexResultsParquet(data []IndexResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to CalculationRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []CalculationRun {
	result := make([]CalculationRun, len(records))
	for i, record := range records {
		result[i] = CalculationRun{
			RunID:            record.RunID,
			SampleID:         record.SampleID,
			SampleName:       record.SampleName,
			Location:         record.Location,
			CalculatedAt:     record.CalculatedAt,
			Scheme:           record.Scheme,
			StandardsVersion: record.StandardsVersion,
			Classification:   record.Classification,
			Overall:          record.Overall,
			Concentrations:   record.Concentrations,
			Violations:       record.Violations,
			Intermediates:    record.Intermediates,
			SampleMeta:       record.SampleMeta,
		}
	}
	return result
}

// ConvertIndexResultRecords converts schema.IndexResultRecord to IndexResult for Parquet export.
func ConvertIndexResultRecords(records []schema.IndexResultRecord) []IndexResult {
	result := make([]IndexResult, len(records))
	for i, record := range records {
		result[i] = IndexResult{
			RunID:          record.RunID,
			IndexName:      record.IndexName,
			Metal:          record.Metal,
			Value:          record.Value,
			Classification: record.Classification,
			Contributing:   record.Contributing,
			Formula:        record.Formula,
		}
	}
	return result
}
