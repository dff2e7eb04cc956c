package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued writes to the backend",
	Long: `Runs one sync pass: queued creates, updates and deletes are replayed in
the order they were made, then records created offline are pushed.

Only available when the backend is reachable and writes are pending.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	cmd.Println("Synchronising pending changes...")

	res, err := r.Status.SyncNow(commandContext(cmd))
	switch {
	case errors.Is(err, domain.ErrNothingToSync):
		cmd.Println("Nothing to sync.")
		return nil
	case errors.Is(err, domain.ErrOffline):
		return errors.New("backend unreachable; changes stay queued")
	case errors.Is(err, domain.ErrSyncInProgress):
		return errors.New("a sync is already running")
	case err != nil:
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Sync complete: %s.\n", res)
	if res.Abandoned > 0 {
		cmd.Println("Run 'swapsync queue abandoned' to review abandoned changes.")
	}
	return nil
}
