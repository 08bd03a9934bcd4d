package schema

import "errors"

// Custom string types for type safety.
type (
	// IndexName represents a pollution index the engine can compute.
	IndexName string

	// OutputMode represents the format of the output.
	OutputMode string

	// ReportFormat represents the format of a rendered run report.
	ReportFormat string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// Canonical indices.
const (
	HPIIndex  IndexName = "HPI"  // Heavy-metal Pollution Index
	HEIIndex  IndexName = "HEI"  // Heavy-metal Evaluation Index
	HMPIIndex IndexName = "HMPI" // mean of concentration/standard ratios
	HCIIndex  IndexName = "HCI"  // Heavy-metal Contamination Index
	PIIndex   IndexName = "PI"   // Pollution Index
	PLIIndex  IndexName = "PLI"  // Pollution Load Index
	CdIndex   IndexName = "Cd"   // Degree of Contamination
	SIIndex   IndexName = "SI"   // per-metal sub-index
)

// Named variants of the canonical indices.
const (
	HPISimpleIndex IndexName = "HPI-S" // percent-ratio HPI over scheme weights
	MIIndex        IndexName = "MI"    // Metal Index, mean ratio over every metal with a standard
	HMIIndex       IndexName = "HMI"   // geometric-mean HMPI
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All report formats supported.
const (
	CSVReport  ReportFormat = "csv"
	HTMLReport ReportFormat = "html"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// DefaultUnit is the concentration unit for every default standard.
const DefaultUnit = "mg/L"

// Sentinel errors surfaced to callers for structurally invalid input.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownIndex = errors.New("unknown index")
)

// AllIndices lists every index in canonical output order.
var AllIndices = []IndexName{
	HPIIndex, HEIIndex, HMPIIndex, HCIIndex, PIIndex, PLIIndex, CdIndex, SIIndex,
	HPISimpleIndex, MIIndex, HMIIndex,
}

// DefaultIndices is the index set computed when the caller does not pick one.
var DefaultIndices = []IndexName{HPIIndex, HEIIndex, HMPIIndex, HCIIndex, PIIndex, PLIIndex, CdIndex}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidReportFormats lists all valid report formats.
var ValidReportFormats = map[ReportFormat]struct{}{
	CSVReport:  {},
	HTMLReport: {},
}

// ValidDatabaseBackends lists all valid run store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
