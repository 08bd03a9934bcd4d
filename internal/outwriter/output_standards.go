package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteStandards outputs the effective reference tables and the index definitions.
func WriteStandards(view schema.StandardsView, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStandardsCSV(w, view)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStandardsTable(w, view, cfg)
		}, "Wrote table")
	}
	return nil
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return schema.FormatConcentration(*v)
}

func writeStandardsCSV(w io.Writer, view schema.StandardsView) error {
	header := []string{"symbol", "name", "permissible_limit", "unit", "ideal", "reference", "weight"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range view.Metals {
			rec := []string{
				m.Symbol,
				m.Name,
				schema.FormatConcentration(m.Limit),
				m.Unit,
				schema.FormatConcentration(m.Ideal),
				optional(m.Reference),
				optional(m.Weight),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// formatBands renders a band table as "<25 Excellent, <50 Good, ... Unsuitable".
func formatBands(bands []schema.BandView) string {
	parts := make([]string, len(bands))
	for i, b := range bands {
		if b.Below != nil {
			parts[i] = fmt.Sprintf("<%s %s", schema.FormatConcentration(*b.Below), b.Category)
		} else {
			parts[i] = fmt.Sprintf("else %s", b.Category)
		}
	}
	return strings.Join(parts, ", ")
}

func writeStandardsTable(w io.Writer, view schema.StandardsView, cfg *contract.Config) error {
	title := "Permissible limits"
	if view.Scheme != "" {
		title += " (weighting scheme: " + view.Scheme + ")"
	}
	if _, err := fmt.Fprintln(w, heading(cfg, "📏", title)); err != nil {
		return err
	}

	metals := tablewriter.NewWriter(w)
	metals.Header([]string{"Metal", "Name", "Limit", "Unit", "Ideal", "Reference", "Weight"})
	metals.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, m := range view.Metals {
		data = append(data, []string{
			m.Symbol,
			m.Name,
			schema.FormatConcentration(m.Limit),
			m.Unit,
			schema.FormatConcentration(m.Ideal),
			optional(m.Reference),
			optional(m.Weight),
		})
	}
	if err := metals.Bulk(data); err != nil {
		return err
	}
	if err := metals.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, heading(cfg, "🧮", "Indices")); err != nil {
		return err
	}
	indices := tablewriter.NewWriter(w)
	indices.Header([]string{"Index", "Formula", "Bands"})
	indices.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})
	formulaWidth := getMaxFormulaWidth(cfg)
	data = nil
	for _, info := range view.Indices {
		data = append(data, []string{
			string(info.Name),
			truncate(info.Formula, formulaWidth),
			formatBands(info.Bands),
		})
	}
	if err := indices.Bulk(data); err != nil {
		return err
	}
	return indices.Render()
}
