package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search UI",
	Long: `Launches an interactive terminal search over the collected content.

Controls:
  Enter    - Search / Toggle details
  ↑/k, ↓/j - Navigate results
  /        - New search
  Esc, q   - Back / Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	return tui.Run(cmd.Context(), retrievalService)
}
