package contract

import (
	"fmt"
	"maps"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/hydrolab/hmpi/schema"
	"github.com/rs/zerolog"
)

// Default values for configuration.
const (
	DefaultPrecision = 3
	MaxPrecision     = 6
	DefaultLimit     = 0 // keep every sample
	MaxResultLimit   = 100000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for a calculation.
// This struct is the "final, validated" config.
type Config struct {
	InputPath   string
	SampleID    string
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Explain     bool
	Width       int // Terminal width override (0 = auto-detect)

	// Indices is the requested index set in canonical order
	Indices []schema.IndexName

	// Standards is the default table merged with config file and flag overrides
	Standards schema.Standards

	// StandardOverrides holds only the config file and flag overrides, so that they can be
	// re-applied on top of a persisted standards table
	StandardOverrides schema.Standards

	IdealValues schema.IdealValues
	Units       map[string]string

	// Reference holds PLI background values; nil means PLI uses Standards
	Reference schema.Standards

	// Weights is an inline weighting scheme; nil means the store default or 1/Si
	Weights    schema.Weights
	SchemeName string

	FailOn       schema.Category
	ReportFormat schema.ReportFormat

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	LogLevel  zerolog.Level
	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile   string `mapstructure:"output-file"`
	Limit        int    `mapstructure:"limit"`
	Workers      int    `mapstructure:"workers"`
	Precision    int    `mapstructure:"precision"`
	Output       string `mapstructure:"output"`
	Width        int    `mapstructure:"width"`
	Indices      string `mapstructure:"indices"`
	Scheme       string `mapstructure:"scheme"`
	RunBackend   string `mapstructure:"run-backend"`
	RunDBConnect string `mapstructure:"run-db-connect"`
	Emoji        string `mapstructure:"emoji"`
	Color        string `mapstructure:"color"`
	LogLevel     string `mapstructure:"log-level"`

	// StandardsStr overrides limits from the command line, e.g. "Pb:0.015,As:0.05"
	StandardsStr string `mapstructure:"standards-override"`

	// --- Fields from calcCmd.Flags() ---
	Explain  bool   `mapstructure:"explain"`
	SampleID string `mapstructure:"sample-id"`

	// --- Fields from checkCmd.Flags() ---
	FailOn string `mapstructure:"fail-on"`

	// --- Fields from reportCmd.Flags() ---
	Format string `mapstructure:"format"`

	// --- Reference tables from the config file ---
	Standards map[string]float64 `mapstructure:"standards"`
	Units     map[string]string  `mapstructure:"units"`
	Ideal     map[string]float64 `mapstructure:"ideal"`
	Reference map[string]float64 `mapstructure:"reference"`
	Weights   map[string]float64 `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Indices = slices.Clone(c.Indices)
	clone.Standards = maps.Clone(c.Standards)
	clone.StandardOverrides = maps.Clone(c.StandardOverrides)
	clone.IdealValues = maps.Clone(c.IdealValues)
	clone.Units = maps.Clone(c.Units)
	clone.Reference = maps.Clone(c.Reference)
	clone.Weights = maps.Clone(c.Weights)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processIndices(cfg, input); err != nil {
		return err
	}
	if err := processReferenceTables(cfg, input); err != nil {
		return err
	}
	if err := processFailOn(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackend parses and validates a run store backend with its connection string.
func ValidateBackend(backend, connStr string) (schema.DatabaseBackend, error) {
	b := schema.DatabaseBackend(strings.ToLower(backend))
	if b == "" {
		b = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[b]; !ok {
		return "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := ValidateDatabaseConnectionString(b, connStr); err != nil {
		return "", err
	}
	return b, nil
}

// validateBackendConfigs validates the run store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend, err := ValidateBackend(input.RunBackend, input.RunDBConnect)
	if err != nil {
		return err
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = input.RunDBConnect
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.Explain = input.Explain
	cfg.SampleID = strings.TrimSpace(input.SampleID)
	cfg.SchemeName = strings.TrimSpace(input.Scheme)
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	// --- 1. ResultLimit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	// --- 4. Report Format Validation ---
	format := input.Format
	if format == "" {
		format = string(schema.HTMLReport)
	}
	cfg.ReportFormat = schema.ReportFormat(strings.ToLower(format))
	if _, ok := schema.ValidReportFormats[cfg.ReportFormat]; !ok {
		return fmt.Errorf("invalid report format '%s'. must be csv, html", input.Format)
	}

	return nil
}

// processIndices parses the requested index list.
func processIndices(cfg *Config, input *ConfigRawInput) error {
	indices, err := schema.ParseIndexList(input.Indices)
	if err != nil {
		return fmt.Errorf("invalid --indices value: %w", err)
	}
	// Keep canonical order so that every output lists indices the same way.
	cfg.Indices = make([]schema.IndexName, 0, len(indices))
	for _, idx := range schema.AllIndices {
		if slices.Contains(indices, idx) {
			cfg.Indices = append(cfg.Indices, idx)
		}
	}
	return nil
}

// processReferenceTables merges the built-in tables with config file and flag overrides.
// Command-line --standards-override takes precedence over the config file.
func processReferenceTables(cfg *Config, input *ConfigRawInput) error {
	overrides, err := canonicalValues("standards", input.Standards, positiveLimit)
	if err != nil {
		return err
	}

	if input.StandardsStr != "" {
		parsed, err := ParseMetalValuesString(input.StandardsStr)
		if err != nil {
			return fmt.Errorf("invalid --standards-override format: %w", err)
		}
		parsed, err = canonicalValues("standards-override", parsed, positiveLimit)
		if err != nil {
			return err
		}
		maps.Copy(overrides, parsed)
	}
	cfg.StandardOverrides = schema.Standards(overrides)
	cfg.Standards = schema.DefaultStandards()
	maps.Copy(cfg.Standards, cfg.StandardOverrides)

	cfg.IdealValues = schema.DefaultIdealValues()
	ideal, err := canonicalValues("ideal", input.Ideal, nonNegative)
	if err != nil {
		return err
	}
	maps.Copy(cfg.IdealValues, ideal)
	for symbol, i := range cfg.IdealValues {
		if s, ok := cfg.Standards[symbol]; ok && i >= s {
			return fmt.Errorf("ideal value for %s (%g) must be below its standard (%g)", symbol, i, s)
		}
	}

	if len(input.Reference) > 0 {
		cfg.Reference, err = canonicalValues("reference", input.Reference, positiveLimit)
		if err != nil {
			return err
		}
	}

	if len(input.Weights) > 0 {
		weights, err := canonicalValues("weights", input.Weights, nonNegative)
		if err != nil {
			return err
		}
		cfg.Weights = schema.Weights(weights)
	}

	cfg.Units = make(map[string]string, len(input.Units))
	for symbol, unit := range input.Units {
		cfg.Units[schema.CanonicalSymbol(symbol)] = strings.TrimSpace(unit)
	}
	return nil
}

func positiveLimit(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// canonicalValues restores metal symbol casing (viper lowercases map keys) and validates each value.
func canonicalValues(section string, raw map[string]float64, valid func(float64) bool) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for key, v := range raw {
		symbol := schema.CanonicalSymbol(strings.TrimSpace(key))
		if symbol == "" {
			return nil, fmt.Errorf("%s: empty metal symbol", section)
		}
		if !valid(v) {
			return nil, fmt.Errorf("%s: invalid value %g for %s", section, v, symbol)
		}
		out[symbol] = v
	}
	return out, nil
}

// processFailOn parses the category threshold used by the check command.
func processFailOn(cfg *Config, input *ConfigRawInput) error {
	if strings.TrimSpace(input.FailOn) == "" {
		cfg.FailOn = schema.Unsuitable
		return nil
	}
	category, err := schema.ParseCategory(input.FailOn)
	if err != nil {
		return fmt.Errorf("invalid --fail-on value: %w", err)
	}
	if !category.Defined() {
		return fmt.Errorf("invalid --fail-on value '%s': must be a defined category", input.FailOn)
	}
	cfg.FailOn = category
	return nil
}

// ParseMetalValuesString parses a string like "Pb:0.015,As:0.05" into a map of symbol to value.
func ParseMetalValuesString(s string) (map[string]float64, error) {
	values := make(map[string]float64)

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid entry '%s', expected 'metal:value'", part)
		}

		symbol := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])
		if symbol == "" {
			return nil, fmt.Errorf("invalid entry '%s', missing metal symbol", part)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s' for %s: %w", valueStr, symbol, err)
		}

		values[schema.CanonicalSymbol(symbol)] = value
	}

	return values, nil
}
