package cmd

import (
	"fmt"
	"strconv"

	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/spf13/cobra"
)

// classifyCmd runs the classifier on its own.
var classifyCmd = &cobra.Command{
	Use:   "classify <value>",
	Short: "Classify an index value into a water quality category.",
	Long: `Map an index value to its water quality category without computing anything else.

HPI bands: <25 Excellent, <50 Good, <75 Poor, <100 Very Poor, otherwise Unsuitable.
Use --index to apply the bands of another index (see 'hmpi standards').

Examples:
  hmpi classify 62.5
  hmpi classify 2.4 --index PLI --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: noInputSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		index, value, err := parseClassifyArgs(cmd, args[0])
		if err != nil {
			contract.LogFatal("Invalid classify arguments", err)
		}
		if err := core.ExecuteClassify(rootCtx, cfg, index, value); err != nil {
			contract.LogFatal("Cannot classify value", err)
		}
	},
}

// parseClassifyArgs reads the value argument and the --index flag.
func parseClassifyArgs(cmd *cobra.Command, arg string) (schema.IndexName, float64, error) {
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q is not a number", schema.ErrInvalidInput, arg)
	}
	name, err := cmd.Flags().GetString("index")
	if err != nil {
		return "", 0, err
	}
	index, err := schema.ParseIndexName(name)
	if err != nil {
		return "", 0, err
	}
	return index, value, nil
}
