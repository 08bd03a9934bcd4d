package iostore

import (
	"errors"
	"fmt"

	"github.com/hydrolab/hmpi/internal/parquet"
)

// ExecuteRunsExport writes the stored runs and index rows to Parquet files
// named <outputFile>.runs.parquet and <outputFile>.index_results.parquet.
func ExecuteRunsExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return ErrStoreDisabled
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no calculation runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total calculation runs: %d\n", status.TotalRuns)
	fmt.Printf("Total index rows: %d\n", status.TableSizes[indexResultsTable])

	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve calculation runs: %w", err)
	}
	results, err := store.ListIndexResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve index results: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetResults := parquet.ConvertIndexResultRecords(results)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteCalculationRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write calculation runs: %w", err)
	}
	fmt.Printf("Exported %d calculation runs to: %s\n", len(parquetRuns), runsFile)

	resultsFile := outputFile + ".index_results.parquet"
	if err := parquet.WriteIndexResultsParquet(parquetResults, resultsFile); err != nil {
		return fmt.Errorf("failed to write index results: %w", err)
	}
	fmt.Printf("Exported %d index rows to: %s\n", len(parquetResults), resultsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with DuckDB, Pandas (via pyarrow) or Spark.")
	return nil
}
