package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest/internal/connectors/confluence"
	"github.com/custodia-labs/harvest/internal/connectors/discourse"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("harvest version %s\n", version)
		cmd.Printf("  %s backend %s\n", confluence.BackendName, confluence.BackendVersion)
		cmd.Printf("  %s backend %s\n", discourse.BackendName, discourse.BackendVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
