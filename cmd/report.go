package cmd

import (
	"fmt"
	"strconv"

	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd renders a stored calculation run.
var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Render a recorded calculation run as an HTML or CSV report",
	Long: `Render a calculation run from the run store as a shareable report.

The report holds the sample information, every metal with its permissible limit and whether it
was exceeded, the index table with classifications and formulas, the threshold violations, the
overall assessment and recommendations for the overall category.

Run IDs are shown by 'hmpi calc' and 'hmpi runs list'.

Examples:
  # HTML report to a file
  hmpi report 42 --output-file report-42.html

  # CSV report to stdout
  hmpi report 42 --format csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: noInputSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || runID <= 0 {
			contract.LogFatal("Invalid run ID", fmt.Errorf("%q is not a positive integer", args[0]))
		}
		if err := core.ExecuteReport(rootCtx, cfg, storeManager, runID); err != nil {
			contract.LogFatal("Cannot render report", err)
		}
	},
}
