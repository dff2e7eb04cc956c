// Package cli implements the swapsync command tree.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driving"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Options are the global flags that influence how services are built.
type Options struct {
	// Offline forces the client offline: every write is queued locally.
	Offline bool

	// Ephemeral keeps the local store in memory; nothing survives the process.
	Ephemeral bool
}

// Runtime holds the services commands operate on.
type Runtime struct {
	Records driving.RecordService
	Sync    driving.SyncManager
	Queue   driving.QueueService
	Status  driving.StatusService

	// SyncInterval drives auto sync in long-running commands.
	SyncInterval time.Duration

	// Background starts connectivity probing and config reloading for
	// long-running commands. The returned func stops them.
	Background func(ctx context.Context) (stop func())

	// Close releases storage handles.
	Close func() error
}

// Bootstrap builds the runtime once flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Runtime, error)

var (
	rt          *Runtime
	bootstrap   Bootstrap
	configStore driven.ConfigStore

	verbose bool
	offline   bool
	ephemeral bool
)

// annotationNoRuntime marks commands that must work without storage or a
// reachable backend, e.g. fixing a broken config.
const annotationNoRuntime = "no-runtime"

var rootCmd = &cobra.Command{
	Use:   "swapsync",
	Short: "Offline-first sync client for the SwapSync shop backend",
	Long: `swapsync keeps a local mirror of shop records (phones, customers, swaps,
sales, repairs) and queues writes while the backend is unreachable.
Queued writes are replayed in order when connectivity returns.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupRuntime,
	PersistentPostRunE: teardownRuntime,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print sync decisions to stderr")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never contact the backend; queue every write")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the local store in memory only")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the runtime builder used by commands that need services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetConfigStore sets the config store used by the config commands.
func SetConfigStore(store driven.ConfigStore) {
	configStore = store
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ownsRuntime is true when setupRuntime built rt and must close it.
var ownsRuntime bool

func setupRuntime(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoRuntime] == "true" || rt != nil || bootstrap == nil {
		return nil
	}

	built, err := bootstrap(cmd.Context(), Options{Offline: offline, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	rt = built
	ownsRuntime = true
	return nil
}

func teardownRuntime(_ *cobra.Command, _ []string) error {
	if !ownsRuntime || rt == nil {
		return nil
	}
	defer func() {
		rt = nil
		ownsRuntime = false
	}()
	if rt.Close != nil {
		return rt.Close()
	}
	return nil
}

var errNotConfigured = errors.New("services not configured")

// requireRuntime returns rt or an error when no services are wired.
func requireRuntime() (*Runtime, error) {
	if rt == nil {
		return nil, errNotConfigured
	}
	return rt, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
