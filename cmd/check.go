package cmd

import (
	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [samples.json|samples.csv|-]",
	Short: "Fail when samples reach a water quality category (for pipelines)",
	Long: `Calculate every sample and enforce a water quality policy.

Exits with a non-zero code when any sample's overall classification is at least as severe as
--fail-on. Nothing is recorded in the run store.

Default threshold: Unsuitable

Use cases:
- Gate a data pipeline on new laboratory results
- Block publishing of a dataset with unsafe samples
- Alert on regressions in a monitoring campaign

Examples:
  # Fail on any unsuitable sample
  hmpi check campaign.csv

  # Stricter policy
  hmpi check campaign.csv --fail-on Poor

  # Stricter lead limit for the check
  hmpi check campaign.csv --standards-override "Pb:0.005"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Exits with code 1 from ExecuteCheck when the policy fails
		if err := core.ExecuteCheck(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
