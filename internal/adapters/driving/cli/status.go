package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and pending changes",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	r.Status.Refresh(commandContext(cmd))
	snap := r.Status.Snapshot()

	state := "offline"
	if snap.Online {
		state = "online"
	}
	cmd.Printf("Connectivity: %s\n", state)
	cmd.Printf("Pending:      %d\n", snap.PendingCount)
	if snap.AbandonedCount > 0 {
		cmd.Printf("Abandoned:    %d\n", snap.AbandonedCount)
	}
	if snap.LastSyncAt.IsZero() {
		cmd.Println("Last sync:    never")
	} else {
		cmd.Printf("Last sync:    %s\n", snap.LastSyncAt.Local().Format(time.RFC1123))
	}
	if snap.LastResult != nil {
		cmd.Printf("Last result:  %s\n", snap.LastResult)
	}
	if snap.CanSyncNow() {
		cmd.Println("\nRun 'swapsync sync' to replay pending changes now.")
	}
	return nil
}
