package contract

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hydrolab/hmpi/schema"
)

// Color variables for console output.
var (
	UnsuitableColor = color.New(color.FgRed, color.Bold)     // standard danger
	VeryPoorColor   = color.New(color.FgMagenta, color.Bold) // strong, distinct warning
	PoorColor       = color.New(color.FgYellow)              // caution, not bold
	GoodColor       = color.New(color.FgCyan)
	ExcellentColor  = color.New(color.FgGreen)
	MissingColor    = color.New(color.Faint)
)

// GetPlainLabel returns the plain text label of a category. This is the core logic used for
// CSV, JSON, and table printing.
func GetPlainLabel(c schema.Category) string {
	if c == "" {
		return string(schema.InsufficientData)
	}
	return string(c)
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(c schema.Category) string {
	text := GetPlainLabel(c)

	switch c {
	case schema.Unsuitable:
		return UnsuitableColor.Sprint(text)
	case schema.VeryPoor:
		return VeryPoorColor.Sprint(text)
	case schema.Poor:
		return PoorColor.Sprint(text)
	case schema.Good:
		return GoodColor.Sprint(text)
	case schema.Excellent:
		return ExcellentColor.Sprint(text)
	default:
		return MissingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.Warn().Err(err).Msg(msg)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hmpi_runs.db"
	}
	return filepath.Join(homeDir, ".hmpi_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// FormatValue renders an index value, or "N/A" when it is undefined.
func FormatValue(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", precision, v)
}
