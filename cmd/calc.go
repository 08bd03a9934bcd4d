package cmd

import (
	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// calcCmd computes the indices of a single sample.
var calcCmd = &cobra.Command{
	Use:   "calc [sample.json|sample.csv|-]",
	Short: "Compute pollution indices for one water sample.",
	Long: `Compute the requested pollution indices for a single water sample and classify it.

The input is a JSON object or array, or a CSV file with one column per metal. It is read from
stdin when the path is omitted or '-'. When the input holds several samples, --sample-id picks one;
otherwise the first sample is used.

The result lists every index with its classification and formula, the HPI classification, the
worst classification across all indices and every metal above its permissible limit. The run is
recorded in the run store unless --run-backend none is set.

Examples:
  # Calculate the default indices for a sample file
  hmpi calc sample.json

  # Read from stdin and show per-metal ratios and weights
  echo '{"Pb": 0.02, "As": 0.005, "Zn": 1.2}' | hmpi calc --explain

  # Only HPI and PLI with a stored weighting scheme
  hmpi calc sample.json --indices HPI,PLI --scheme toxicity

  # Override a limit and emit JSON
  hmpi calc sample.json --standards-override "Pb:0.015" --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCalc(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot calculate sample", err)
		}
	},
}

// batchCmd computes the indices of many samples concurrently.
var batchCmd = &cobra.Command{
	Use:   "batch [samples.json|samples.csv|-]",
	Short: "Compute pollution indices for many samples, ranked by HPI.",
	Long: `Compute pollution indices for every sample of a JSON array or CSV file.

Samples are calculated concurrently (--workers), ranked from the most to the least polluted by
HPI and summarized by overall classification. Each sample is recorded as its own run.

Examples:
  # Rank a monitoring campaign
  hmpi batch campaign.csv

  # Show only the ten worst samples
  hmpi batch campaign.csv --limit 10

  # Export every index to CSV
  hmpi batch campaign.json --indices all --output csv --output-file indices.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBatch(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run batch calculation", err)
		}
	},
}
