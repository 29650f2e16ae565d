// Package cli provides the harvest command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/core/ports/driving"
	"github.com/custodia-labs/harvest/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Services wired by main.
var (
	harvestService driving.HarvestService
	syncStore      driven.SyncStateStore
	archiveStore   driven.ArchiveStore
	configStore    driven.ConfigStore
)

var (
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest historical contents from collaboration platforms",
	Long: `harvest retrieves the items changed since a checkpoint from a remote
platform and writes them as JSON lines, one envelope per item.

Confluence servers are harvested version by version, so every historical
revision of a changed page is emitted. Discourse boards are harvested post
by post. The newest update time seen is stored so the next run resumes
where the last successful one stopped.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
		logger.SetQuiet(quietFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print debug and progress messages")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress warnings")
}

// Dependencies are the services the commands run against.
type Dependencies struct {
	HarvestService driving.HarvestService
	SyncStore      driven.SyncStateStore
	ArchiveStore   driven.ArchiveStore
	ConfigStore    driven.ConfigStore
}

// Configure wires the services used by the commands.
func Configure(deps Dependencies) {
	harvestService = deps.HarvestService
	syncStore = deps.SyncStore
	archiveStore = deps.ArchiveStore
	configStore = deps.ConfigStore
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
