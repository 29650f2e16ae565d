package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage recorded archives",
	Long: `Archives hold the raw responses recorded by fetch --archive.
Replay one with fetch --from-archive <id>.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if archiveStore == nil {
			return errors.New("archive store not configured")
		}

		archives, err := archiveStore.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list archives: %w", err)
		}

		if len(archives) == 0 {
			cmd.Println("No archives recorded.")
			return nil
		}

		cmd.Println("Archives:")
		for _, a := range archives {
			cmd.Printf("  %s  %s %s  %s  %s\n",
				a.ID, a.BackendName, a.BackendVersion, a.Origin, a.CreatedAt.Local().Format(time.DateTime))
		}
		return nil
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archive and its responses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if archiveStore == nil {
			return errors.New("archive store not configured")
		}

		if err := archiveStore.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete archive %s: %w", args[0], err)
		}

		cmd.Printf("Deleted archive %s\n", args[0])
		return nil
	},
}

func init() {
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveDeleteCmd)
	rootCmd.AddCommand(archiveCmd)
}
