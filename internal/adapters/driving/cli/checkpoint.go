package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or reset stored checkpoints",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show [backend origin]",
	Short: "Show stored checkpoints",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncStore == nil {
			return errors.New("sync store not configured")
		}
		ctx := cmd.Context()

		if len(args) == 2 {
			state, err := syncStore.Get(ctx, checkpointKey(args[0], args[1]))
			if errors.Is(err, domain.ErrNotFound) {
				cmd.Printf("No checkpoint for %s %s; the next fetch is a full harvest.\n", args[0], args[1])
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get checkpoint: %w", err)
			}
			printSyncState(cmd, *state)
			return nil
		}

		states, err := syncStore.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list checkpoints: %w", err)
		}
		if len(states) == 0 {
			cmd.Println("No checkpoints stored.")
			return nil
		}
		for _, state := range states {
			printSyncState(cmd, state)
		}
		return nil
	},
}

var checkpointResetCmd = &cobra.Command{
	Use:   "reset <backend> <origin>",
	Short: "Forget a checkpoint so the next fetch is a full harvest",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncStore == nil {
			return errors.New("sync store not configured")
		}

		key := checkpointKey(args[0], args[1])
		if err := syncStore.Delete(cmd.Context(), key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to reset checkpoint: %w", err)
		}

		cmd.Printf("Checkpoint reset for %s %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointResetCmd)
	rootCmd.AddCommand(checkpointCmd)
}

// checkpointKey matches the key harvests are stored under, which uses the
// origin without a trailing slash.
func checkpointKey(backend, origin string) string {
	return domain.SourceKey(backend, strings.TrimRight(origin, "/"))
}

func printSyncState(cmd *cobra.Command, state domain.SyncState) {
	backend, origin, _ := strings.Cut(state.SourceID, "|")
	cmd.Printf("%s %s\n", backend, origin)
	cmd.Printf("  Checkpoint: %s\n", state.Checkpoint.UTC().Format(time.RFC3339Nano))
	cmd.Printf("  Last sync:  %s\n", state.LastSync.Local().Format(time.DateTime))
	cmd.Printf("  Items:      %d\n", state.Items)
}
