package cmd

import (
	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// schemesCmd groups weighting scheme management.
var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "Manage HPI weighting schemes in the run store",
	Long: `Manage named weighting schemes used by HPI.

A weighting scheme assigns a relative importance to each metal. Without a scheme HPI weights
every metal by 1/Si. The default scheme applies when neither --scheme nor a 'weights:' config
section is given.

Subcommands:
  list        - Show stored schemes and their weights
  set-default - Mark a scheme as the default
  import      - Store a scheme from a YAML/JSON/TOML file

Examples:
  hmpi schemes import toxicity.yaml
  hmpi schemes set-default toxicity
  hmpi schemes list --output json`,
}

var schemesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored weighting schemes",
	Args:    cobra.NoArgs,
	PreRunE: noInputSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSchemesList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list weighting schemes", err)
		}
	},
}

var schemesSetDefaultCmd = &cobra.Command{
	Use:     "set-default <name>",
	Short:   "Make a stored scheme the default for HPI",
	Args:    cobra.ExactArgs(1),
	PreRunE: noInputSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteSetDefaultScheme(rootCtx, cfg, storeManager, args[0]); err != nil {
			contract.LogFatal("Cannot set default scheme", err)
		}
	},
}

var schemesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a weighting scheme from a file",
	Long: `Read a weighting scheme from a file and store it, replacing a scheme of the same name.

Example file:
  name: toxicity
  description: Weights by relative toxicity
  default: true
  weights:
    As: 5
    Hg: 5
    Pb: 4
    Cd: 4
    Zn: 1`,
	Args:    cobra.ExactArgs(1),
	PreRunE: noInputSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		if err := core.ExecuteImportScheme(rootCtx, cfg, storeManager, args[0], name); err != nil {
			contract.LogFatal("Cannot import weighting scheme", err)
		}
	},
}
