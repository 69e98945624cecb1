// Package cli implements the roam command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// Global flag values.
var (
	serverURL  string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "roam",
	Short: "Terminal client for the travel assistant",
	Long: `roam talks to the travel assistant backend: chat about trips and browse the
travel plans, todo lists, and budgets the assistant creates.

Run without a subcommand to open the interactive UI.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides config and ROAM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/roam/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the command named by os.Args.
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}
