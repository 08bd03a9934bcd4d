package iostore

import (
	"fmt"

	"github.com/hydrolab/hmpi/schema"
)

// Table names for run tracking.
const (
	runsTable         = "hmpi_calculation_runs"
	indexResultsTable = "hmpi_index_results"
	standardsTable    = "hmpi_metal_standards"
	schemesTable      = "hmpi_weighting_schemes"
)

// allTables lists every table in creation order.
var allTables = []string{runsTable, indexResultsTable, standardsTable, schemesTable}

// quoteTableName quotes a table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// createTableQueries returns the CREATE TABLE statements for a backend, in allTables order.
func createTableQueries(backend schema.DatabaseBackend) []string {
	runs := quoteTableName(runsTable, backend)
	results := quoteTableName(indexResultsTable, backend)
	standards := quoteTableName(standardsTable, backend)
	schemes := quoteTableName(schemesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				sample_id VARCHAR(128) NOT NULL,
				sample_name VARCHAR(255),
				location_name VARCHAR(255),
				calculated_at DATETIME(6) NOT NULL,
				scheme_name VARCHAR(128),
				standards_version INT NOT NULL,
				classification VARCHAR(32) NOT NULL,
				overall_classification VARCHAR(32) NOT NULL,
				concentrations TEXT NOT NULL,
				threshold_violations TEXT NOT NULL,
				intermediate_values TEXT,
				sample_meta TEXT
			);`, runs),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				index_name VARCHAR(16) NOT NULL,
				metal VARCHAR(16) NOT NULL,
				value DOUBLE,
				classification VARCHAR(32) NOT NULL,
				contributing INT NOT NULL,
				formula TEXT NOT NULL,
				PRIMARY KEY (run_id, index_name, metal)
			);`, results),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				symbol VARCHAR(16) PRIMARY KEY,
				metal_name VARCHAR(64) NOT NULL,
				permissible_limit DOUBLE NOT NULL,
				unit VARCHAR(16) NOT NULL,
				standard_type VARCHAR(64) NOT NULL,
				version INT NOT NULL,
				is_active TINYINT NOT NULL
			);`, standards),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name VARCHAR(128) PRIMARY KEY,
				description TEXT,
				weights TEXT NOT NULL,
				is_default TINYINT NOT NULL
			);`, schemes),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				sample_id TEXT NOT NULL,
				sample_name TEXT,
				location_name TEXT,
				calculated_at TIMESTAMPTZ NOT NULL,
				scheme_name TEXT,
				standards_version INT NOT NULL,
				classification TEXT NOT NULL,
				overall_classification TEXT NOT NULL,
				concentrations TEXT NOT NULL,
				threshold_violations TEXT NOT NULL,
				intermediate_values TEXT,
				sample_meta TEXT
			);`, runs),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				index_name TEXT NOT NULL,
				metal TEXT NOT NULL,
				value DOUBLE PRECISION,
				classification TEXT NOT NULL,
				contributing INT NOT NULL,
				formula TEXT NOT NULL,
				PRIMARY KEY (run_id, index_name, metal)
			);`, results),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT PRIMARY KEY,
				metal_name TEXT NOT NULL,
				permissible_limit DOUBLE PRECISION NOT NULL,
				unit TEXT NOT NULL,
				standard_type TEXT NOT NULL,
				version INT NOT NULL,
				is_active SMALLINT NOT NULL
			);`, standards),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name TEXT PRIMARY KEY,
				description TEXT,
				weights TEXT NOT NULL,
				is_default SMALLINT NOT NULL
			);`, schemes),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				sample_id TEXT NOT NULL,
				sample_name TEXT,
				location_name TEXT,
				calculated_at TEXT NOT NULL,
				scheme_name TEXT,
				standards_version INTEGER NOT NULL,
				classification TEXT NOT NULL,
				overall_classification TEXT NOT NULL,
				concentrations TEXT NOT NULL,
				threshold_violations TEXT NOT NULL,
				intermediate_values TEXT,
				sample_meta TEXT
			);`, runs),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				index_name TEXT NOT NULL,
				metal TEXT NOT NULL,
				value REAL,
				classification TEXT NOT NULL,
				contributing INTEGER NOT NULL,
				formula TEXT NOT NULL,
				PRIMARY KEY (run_id, index_name, metal)
			);`, results),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT PRIMARY KEY,
				metal_name TEXT NOT NULL,
				permissible_limit REAL NOT NULL,
				unit TEXT NOT NULL,
				standard_type TEXT NOT NULL,
				version INTEGER NOT NULL,
				is_active INTEGER NOT NULL
			);`, standards),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name TEXT PRIMARY KEY,
				description TEXT,
				weights TEXT NOT NULL,
				is_default INTEGER NOT NULL
			);`, schemes),
		}
	}
}
