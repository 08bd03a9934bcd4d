// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteResult prints one calculated sample using the configured output format.
func (ow *OutWriter) WriteResult(resp schema.CalculateResponse, cfg *contract.Config, duration time.Duration) error {
	return WriteSampleResult(resp, cfg, duration)
}

// WriteBatch prints ranked batch results using the configured output format.
func (ow *OutWriter) WriteBatch(results []schema.EnrichedSampleResult, summary schema.BatchSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteBatchResults(results, summary, cfg, duration)
}

// WriteClassification prints a single classified index value.
func (ow *OutWriter) WriteClassification(index schema.IndexName, value float64, category schema.Category, cfg *contract.Config) error {
	return WriteClassification(index, value, category, cfg)
}

// WriteStandards prints the reference tables and index definitions.
func (ow *OutWriter) WriteStandards(view schema.StandardsView, cfg *contract.Config) error {
	return WriteStandards(view, cfg)
}

// WriteSchemes prints the stored weighting schemes.
func (ow *OutWriter) WriteSchemes(schemes []schema.WeightingScheme, cfg *contract.Config) error {
	return WriteSchemes(schemes, cfg)
}

// WriteRuns prints stored calculation runs.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return WriteRuns(runs, cfg)
}

// WriteReport renders a stored run in the configured report format.
func (ow *OutWriter) WriteReport(detail schema.RunDetail, cfg *contract.Config) error {
	return WriteReport(detail, cfg)
}
