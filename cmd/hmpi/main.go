// Command hmpi computes heavy-metal pollution indices for water samples.
package main

import (
	"os"

	"github.com/hydrolab/hmpi/cmd"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/internal/iostore"
)

func main() {
	err := cmd.Execute()
	iostore.CloseStore()
	if err != nil {
		contract.Logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
