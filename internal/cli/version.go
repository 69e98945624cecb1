package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/roam/internal/version"
)

var versionOutput string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, commit, and build date of roam.",
	Args:  cobra.NoArgs,
	// Version runs without config or a backend.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	if err := validOutput(versionOutput); err != nil {
		return err
	}
	info := version.Get()
	if versionOutput != outputTable {
		return writeStructured(cmd.OutOrStdout(), versionOutput, info)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "🧭 %s\n", info)
	return nil
}

func init() {
	addOutputFlag(versionCmd, &versionOutput)
	rootCmd.AddCommand(versionCmd)
}
