package outwriter

import (
	"os"

	"github.com/huangsam/fosdash/internal/contract"
	"golang.org/x/term"
)

// Bounds for the firm name column.
const (
	minNameWidth = 15
	maxNameWidth = 50
)

// terminalWidth returns the configured width override, the detected terminal width,
// or a conservative default when neither is available.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxTableNameWidth calculates the maximum width for firm names in table output.
// fixedWidth is the space taken by the other columns including borders and padding.
func getMaxTableNameWidth(cfg *contract.Config, fixedWidth int) int {
	available := terminalWidth(cfg) - fixedWidth
	if available < minNameWidth {
		return minNameWidth
	}
	if available > maxNameWidth {
		return maxNameWidth
	}
	return available
}
