// Package cmd defines the command-line interface for hmpi.
package cmd

import (
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(standardsCmd)
	rootCmd.AddCommand(schemesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the standards subcommands to the parent standards command
	standardsCmd.AddCommand(standardsImportCmd)

	// Add the schemes subcommands to the parent schemes command
	schemesCmd.AddCommand(schemesListCmd)
	schemesCmd.AddCommand(schemesSetDefaultCmd)
	schemesCmd.AddCommand(schemesImportCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultLimit, "Number of samples or runs to display (0 = all)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for index values")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("indices", "", "Comma-separated indices to compute, or 'all' (default HPI,HEI,HMPI,HCI,PI,PLI,Cd)")
	rootCmd.PersistentFlags().String("scheme", "", "Name of a stored weighting scheme for HPI")
	rootCmd.PersistentFlags().String("standards-override", "", "Permissible limit overrides in mg/L (format: 'Pb:0.015,As:0.05')")
	rootCmd.PersistentFlags().String("run-backend", string(schema.SQLiteBackend), "Run store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Diagnostic log level: trace, debug, info, warn, error, disabled")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of calcCmd to Viper
	calcCmd.Flags().Bool("explain", false, "Print per-metal ratios, ratings and weights")
	calcCmd.Flags().String("sample-id", "", "Sample to calculate when the input holds several")
	if err := viper.BindPFlags(calcCmd.Flags()); err != nil {
		contract.LogFatal("Error binding calc flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("fail-on", string(schema.Unsuitable), "Fail when a sample's overall category is at least this severe")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().String("format", string(schema.HTMLReport), "Report format: html or csv")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// These flags only make sense on their own command, so they stay out of Viper
	classifyCmd.Flags().String("index", string(schema.HPIIndex), "Index whose classification bands apply")
	schemesImportCmd.Flags().String("name", "", "Scheme name (overrides the name in the file)")

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
