package cmd

import (
	"github.com/hydrolab/hmpi/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the hmpi MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents calculate and classify water samples.

Tools:
  calculate_indices - indices, classifications and violations for one sample
  classify_index    - category of an index value
  list_standards    - effective limits, weights, formulas and bands
  get_run           - a recorded calculation run`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// Logs already go to stderr, so stdio stays free for the protocol.
		return sharedSetup(rootCtx, cmd, nil)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
