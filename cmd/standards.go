package cmd

import (
	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// standardsCmd shows the effective reference tables.
var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "Show permissible limits, weights and index definitions",
	Long: `Display the reference tables a calculation would use right now.

Limits come from the run store (seeded with the WHO/BIS defaults), then the config file
'standards:' section, then --standards-override. Weights come from --scheme, the config file
'weights:' section, or the default scheme in the store; without any of them HPI uses 1/Si.

Every index is listed with its formula and classification bands.

Examples:
  hmpi standards
  hmpi standards --scheme toxicity --output json`,
	Args:    cobra.NoArgs,
	PreRunE: noInputSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStandards(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot show standards", err)
		}
	},
}

// standardsImportCmd replaces the stored metal standards.
var standardsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a new version of the metal standards from a file",
	Long: `Read permissible limits from a YAML, JSON or TOML file and store them as the active
standards. The file uses the keys 'standards' (symbol -> mg/L), 'units', 'standard-type' and
'version'; the version defaults to one above the stored one.

Example file:
  standard-type: EU 2020/2184
  standards:
    Pb: 0.005
    As: 0.01
  units:
    Pb: mg/L

Examples:
  hmpi standards import eu-limits.yaml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: noInputSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteImportStandards(rootCtx, cfg, storeManager, args[0]); err != nil {
			contract.LogFatal("Cannot import standards", err)
		}
	},
}
