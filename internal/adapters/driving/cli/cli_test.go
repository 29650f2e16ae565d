package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/harvest/internal/core/services"
)

type testDeps struct {
	syncStore    *memory.SyncStateStore
	archiveStore *memory.ArchiveStore
	configStore  *memory.ConfigStore
}

// setupCLI wires in-memory services and resets command state afterwards.
func setupCLI(t *testing.T) *testDeps {
	t.Helper()

	deps := &testDeps{
		syncStore:    memory.NewSyncStateStore(),
		archiveStore: memory.NewArchiveStore(),
		configStore:  memory.NewConfigStore(),
	}
	// No throttling against local test servers.
	require.NoError(t, deps.configStore.Set("transport.rate", 0.0))

	Configure(Dependencies{
		HarvestService: services.NewHarvestOrchestrator(deps.syncStore),
		SyncStore:      deps.syncStore,
		ArchiveStore:   deps.archiveStore,
		ConfigStore:    deps.configStore,
	})
	resetFlags(rootCmd)

	t.Cleanup(func() {
		Configure(Dependencies{})
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return deps
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command and returns its stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
