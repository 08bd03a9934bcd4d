package cmd

import (
	"fmt"

	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/internal/iostore"
	"github.com/hydrolab/hmpi/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run store maintenance.
// This is used by commands that need store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ValidateBackend(viper.GetString("run-backend"), viper.GetString("run-db-connect"))
	if err != nil {
		return err
	}
	level, err := contract.ParseLogLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	contract.SetLogLevel(level)

	if err := iostore.InitStore(backend, viper.GetString("run-db-connect")); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = viper.GetString("run-db-connect")
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ValidateBackend(viper.GetString("run-backend"), viper.GetString("run-db-connect"))
	if err != nil {
		return err
	}

	connStr := viper.GetString("run-db-connect")
	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunDBFilePath()
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run store management.
//
// Note: Most runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by calculation commands.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded calculation runs",
	Long: `Manage the calculation runs recorded by calc and batch.

Every calculation stores:
- The sample, its metadata and the standards used
- Each index value and classification
- Threshold violations and per-metal intermediate values

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show the most recent runs
  status  - Show store statistics
  export  - Export runs and index results to Parquet
  clear   - Remove all stored data
  migrate - Run database schema migrations

Examples:
  hmpi runs list --limit 20
  hmpi runs export --output-file campaign`,
}

// runsListCmd lists recent runs.
var runsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the most recent calculation runs",
	Args:    cobra.NoArgs,
	PreRunE: noInputSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRunsList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list runs", err)
		}
	},
}

// runsClearCmd clears the run store.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs, standards and schemes",
	Long: `Delete every stored calculation run together with the stored standards and weighting schemes.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the hmpi tables

Examples:
  hmpi runs export --output-file backup
  hmpi runs clear`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// The migrate setup resolves the SQLite file path into RunDBConnect
		if err := iostore.ClearRuns(cfg.RunBackend, cfg.RunDBConnect, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear runs", err)
		}
		fmt.Println("Run store cleared successfully.")
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run store statistics and connection details",
	Long: `Show the backend, connection state, number of runs and samples, the newest and oldest
run and the size of every table.`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iostore.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iostore.PrintRunStatus(status)
	},
}

// runsExportCmd exports runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs and index results to Parquet",
	Long: `Export every stored run and index result to two Parquet files,
<output-file>.runs.parquet and <output-file>.index_results.parquet.

Requires: --output-file parameter

Examples:
  hmpi runs export --output-file campaign
  duckdb -c "SELECT classification, count(*) FROM 'campaign.runs.parquet' GROUP BY 1"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export runs", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hmpi runs migrate

  # Rollback to the initial state
  hmpi runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iostore.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
