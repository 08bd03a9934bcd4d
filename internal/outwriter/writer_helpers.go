package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters creates the common formatter closures used across multiple output types.
// Undefined values render as "N/A".
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return contract.FormatValue(v, precision)
	}
	return fmtFloat, intFmt
}

// labelFunc picks colored or plain category labels.
func labelFunc(cfg *contract.Config) func(schema.Category) string {
	if cfg.UseColors {
		return contract.GetColorLabel
	}
	return contract.GetPlainLabel
}

// indexLabel names an index entry, adding the metal for per-metal sub-indices.
func indexLabel(v schema.IndexValue) string {
	if v.Metal != "" {
		return fmt.Sprintf("%s (%s)", v.Name, v.Metal)
	}
	return string(v.Name)
}

// heading prefixes a section title with an emoji when enabled.
func heading(cfg *contract.Config, emoji, title string) string {
	if cfg.UseEmojis {
		return emoji + " " + title
	}
	return title
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// yesNo renders a boolean for tables and CSV.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// joinViolations renders violations for a single CSV cell.
func joinViolations(v []string) string {
	return strings.Join(v, "; ")
}
