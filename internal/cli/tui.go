package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tessro/roam/internal/paths"
	"github.com/tessro/roam/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive UI",
	Long:  "Open the split chat and document panel interface. This is also what plain `roam` does.",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	historyPath, err := paths.InputHistoryPath()
	if err != nil {
		// The UI still works, it just forgets what was typed.
		slog.Warn("input history disabled", "error", err)
		historyPath = ""
	}

	return tui.Run(cmd.Context(), a.ctrl, tui.Options{
		Server:         a.cfg.GetServer(),
		HistoryPath:    historyPath,
		ConfirmDeletes: a.cfg.GetConfirmDeletes(),
	})
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
