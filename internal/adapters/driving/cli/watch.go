package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/swapsync/swapsync-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep syncing in the foreground",
	Long: `Monitors backend connectivity and replays queued writes as soon as it
returns. Auto sync also runs on the configured interval, and changes to
config.toml (for example a new token) are applied without a restart.

Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "auto sync interval (default from sync.interval)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = r.SyncInterval
	}

	stopBackground := startBackground(ctx, r)
	defer stopBackground()

	r.Sync.StartAutoSync(ctx, interval)
	defer r.Sync.StopAutoSync()

	cmd.Printf("Watching for connectivity changes (auto sync every %s). Press Ctrl+C to stop.\n",
		interval.Round(time.Second))

	err = r.Status.Start(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("watch stopped")
		return nil
	}
	return err
}

// startBackground starts connectivity probing and config reloading when
// the runtime provides them.
func startBackground(ctx context.Context, r *Runtime) func() {
	if r.Background == nil {
		return func() {}
	}
	return r.Background(ctx)
}
