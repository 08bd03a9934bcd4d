package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// batchIndices returns the requested indices that have one value per sample.
func batchIndices(cfg *contract.Config) []schema.IndexName {
	var out []schema.IndexName
	for _, name := range cfg.Indices {
		if name != schema.SIIndex {
			out = append(out, name)
		}
	}
	return out
}

// WriteBatchResults outputs ranked batch results, dispatching based on the output format configured.
func WriteBatchResults(results []schema.EnrichedSampleResult, summary schema.BatchSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Summary schema.BatchSummary           `json:"summary"`
				Results []schema.EnrichedSampleResult `json:"samples"`
			}{summary, results})
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, results, cfg, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, results, summary, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeBatchCSV writes one row per sample with a column per index.
func writeBatchCSV(w io.Writer, results []schema.EnrichedSampleResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	indices := batchIndices(cfg)
	header := []string{"rank", "sample_id"}
	for _, name := range indices {
		header = append(header, string(name))
	}
	header = append(header, "classification", "overall_classification", "violations")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{strconv.Itoa(r.Rank), r.SampleID}
			for _, name := range indices {
				rec = append(rec, fmtFloat(r.Value(name)))
			}
			rec = append(rec,
				contract.GetPlainLabel(r.Classification),
				contract.GetPlainLabel(r.Overall),
				joinViolations(r.Violations),
			)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeBatchTable generates and writes the human-readable ranking table.
func writeBatchTable(w io.Writer, results []schema.EnrichedSampleResult, summary schema.BatchSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	label := labelFunc(cfg)
	indices := batchIndices(cfg)

	table := tablewriter.NewWriter(w)
	headers := []string{"Rank", "Sample"}
	for _, name := range indices {
		headers = append(headers, string(name))
	}
	headers = append(headers, "HPI Class", "Overall", "Violations")
	table.Header(headers)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range results {
		row := []string{strconv.Itoa(r.Rank), r.SampleID}
		for _, name := range indices {
			row = append(row, fmtFloat(r.Value(name)))
		}
		row = append(row, label(r.Classification), label(r.Overall), fmt.Sprintf(intFmt, len(r.Violations)))
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d of %d samples (%d with threshold violations)\n", len(results), summary.Total, summary.Violating); err != nil {
		return err
	}
	for _, c := range schema.AllCategories {
		if n := summary.ByCategory[c]; n > 0 {
			if _, err := fmt.Fprintf(w, "  %s: %d\n", label(c), n); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "Batch completed in %v with %d workers\n", duration, cfg.Workers)
	return err
}
