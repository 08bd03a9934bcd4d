package outwriter

import (
	"os"

	"github.com/hydrolab/hmpi/internal/contract"
	"golang.org/x/term"
)

// getMaxFormulaWidth calculates the maximum width for the formula column in table output
// based on terminal width and table configuration.
func getMaxFormulaWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Index + Value + Classification + Contributing with borders/padding
	baseWidth := 60

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 90 {
		return 90
	}
	return available
}
