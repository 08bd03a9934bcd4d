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

// WriteSampleResult outputs one calculation, dispatching based on the output format configured.
func WriteSampleResult(resp schema.CalculateResponse, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, resp)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultCSV(w, resp, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultTable(w, resp, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeResultCSV writes one row per index value.
func writeResultCSV(w io.Writer, resp schema.CalculateResponse, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"sample_id", "index", "metal", "value", "classification", "contributing", "formula"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, v := range resp.Results {
			rec := []string{
				resp.SampleID,
				string(v.Name),
				v.Metal,
				fmtFloat(v.Value),
				contract.GetPlainLabel(v.Classification),
				fmt.Sprintf(intFmt, v.Contributing),
				v.Formula,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeResultTable generates and writes the human-readable tables for one sample.
func writeResultTable(w io.Writer, resp schema.CalculateResponse, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	label := labelFunc(cfg)

	if _, err := fmt.Fprintln(w, heading(cfg, "💧", "Sample "+resp.SampleID)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	headers := []string{"Index", "Value", "Classification", "Metals"}
	if cfg.Explain {
		headers = append(headers, "Formula")
	}
	table.Header(headers)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	formulaWidth := getMaxFormulaWidth(cfg)
	var data [][]string
	for _, v := range resp.Results {
		row := []string{
			indexLabel(v),
			fmtFloat(v.Value),
			label(v.Classification),
			fmt.Sprintf(intFmt, v.Contributing),
		}
		if cfg.Explain {
			row = append(row, truncate(v.Formula, formulaWidth))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Explain && len(resp.IntermediateValues) > 0 {
		if err := writeIntermediatesTable(w, resp.IntermediateValues, cfg, fmtFloat); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "HPI classification: %s | Overall: %s\n", label(resp.Classification), label(resp.OverallClassification)); err != nil {
		return err
	}
	if err := writeViolationList(w, resp.ThresholdViolations, cfg); err != nil {
		return err
	}
	if resp.RunID > 0 {
		if _, err := fmt.Fprintf(w, "Recorded as run %d. Backend: %s\n", resp.RunID, cfg.RunBackend); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Calculated %d indices in %v\n", len(resp.Results), duration)
	return err
}

// writeIntermediatesTable shows the per-metal values behind each index.
func writeIntermediatesTable(w io.Writer, rows []schema.MetalContribution, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintln(w, heading(cfg, "🔬", "Per-metal intermediates")); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metal", "Ci", "Si", "Ii", "Ci/Si", "Qi", "Wi", "CF", "Excess", "Exceeds"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, m := range rows {
		data = append(data, []string{
			m.Symbol,
			schema.FormatConcentration(m.Concentration),
			schema.FormatConcentration(m.Standard),
			schema.FormatConcentration(m.Ideal),
			fmtFloat(m.Ratio),
			fmtFloat(m.QualityRating),
			fmtFloat(m.Weight),
			fmtFloat(m.ContaminationFactor),
			fmtFloat(m.Excess),
			yesNo(m.Exceeds),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeViolationList prints threshold violations, one per line.
func writeViolationList(w io.Writer, violations []string, cfg *contract.Config) error {
	if len(violations) == 0 {
		_, err := fmt.Fprintln(w, "No threshold violations")
		return err
	}
	if _, err := fmt.Fprintln(w, heading(cfg, "⚠️ ", "Threshold violations ("+strconv.Itoa(len(violations))+"):")); err != nil {
		return err
	}
	for _, v := range violations {
		if _, err := fmt.Fprintf(w, "  - %s\n", v); err != nil {
			return err
		}
	}
	return nil
}

// WriteClassification prints a single classified value.
func WriteClassification(index schema.IndexName, value float64, category schema.Category, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		switch cfg.Output {
		case schema.JSONOut:
			return writeJSON(w, schema.IndexValue{
				Name:           index,
				Value:          value,
				Classification: category,
				Formula:        schema.Formula(index),
			})
		case schema.CSVOut:
			return writeCSVWithHeader(w, []string{"index", "value", "classification"}, func(cw *csv.Writer) error {
				return cw.Write([]string{string(index), fmtFloat(value), contract.GetPlainLabel(category)})
			})
		default:
			_, err := fmt.Fprintf(w, "%s %s → %s\n", index, fmtFloat(value), labelFunc(cfg)(category))
			return err
		}
	}, "Wrote classification")
}
