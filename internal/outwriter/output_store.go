package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// formatSchemeWeights renders weights as "Cd=5, Pb=5" in symbol order.
func formatSchemeWeights(weights schema.Weights) string {
	parts := make([]string, 0, len(weights))
	for _, symbol := range slices.Sorted(maps.Keys(weights)) {
		parts = append(parts, fmt.Sprintf("%s=%s", symbol, schema.FormatConcentration(weights[symbol])))
	}
	return strings.Join(parts, ", ")
}

// WriteSchemes outputs the stored weighting schemes.
func WriteSchemes(schemes []schema.WeightingScheme, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		switch cfg.Output {
		case schema.JSONOut:
			return writeJSON(w, schemes)
		case schema.CSVOut:
			return writeCSVWithHeader(w, []string{"name", "default", "description", "weights"}, func(cw *csv.Writer) error {
				for _, s := range schemes {
					if err := cw.Write([]string{s.Name, yesNo(s.IsDefault), s.Description, formatSchemeWeights(s.Weights)}); err != nil {
						return err
					}
				}
				return nil
			})
		default:
			if len(schemes) == 0 {
				_, err := fmt.Fprintln(w, "No weighting schemes stored. Indices use 1/Si weights.")
				return err
			}
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Name", "Default", "Description", "Weights"})
			table.Configure(func(c *tablewriter.Config) {
				c.Row.Alignment.Global = tw.AlignLeft
			})
			var data [][]string
			for _, s := range schemes {
				data = append(data, []string{s.Name, yesNo(s.IsDefault), s.Description, formatSchemeWeights(s.Weights)})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}
	}, "Wrote schemes")
}

// WriteRuns outputs stored calculation runs, newest first.
func WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		switch cfg.Output {
		case schema.JSONOut:
			return writeJSON(w, runs)
		case schema.CSVOut:
			header := []string{"run_id", "sample_id", "calculated_at", "classification", "overall_classification", "scheme"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range runs {
					if err := cw.Write(runRow(r, contract.GetPlainLabel)); err != nil {
						return err
					}
				}
				return nil
			})
		default:
			if len(runs) == 0 {
				_, err := fmt.Fprintln(w, "No calculation runs recorded.")
				return err
			}
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Run", "Sample", "Calculated", "HPI Class", "Overall", "Scheme"})
			table.Configure(func(c *tablewriter.Config) {
				c.Row.Alignment.Global = tw.AlignRight
			})
			var data [][]string
			for _, r := range runs {
				data = append(data, runRow(r, labelFunc(cfg)))
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}
	}, "Wrote runs")
}

func runRow(r schema.RunRecord, label func(schema.Category) string) []string {
	scheme := ""
	if r.Scheme != nil {
		scheme = *r.Scheme
	}
	return []string{
		strconv.FormatInt(r.RunID, 10),
		r.SampleID,
		r.CalculatedAt.Local().Format("2006-01-02 15:04:05"),
		label(schema.Category(r.Classification)),
		label(schema.Category(r.Overall)),
		scheme,
	}
}
