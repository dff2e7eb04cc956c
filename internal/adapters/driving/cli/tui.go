package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/swapsync/swapsync-cli/internal/adapters/driving/tui"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the live sync dashboard",
	Long: `Launch the interactive sync dashboard.

Shows whether the backend is reachable, how many writes are queued or
abandoned, and when the last sync ran. Connectivity is monitored and auto
sync runs while the dashboard is open.

Controls:
  s        - Sync now
  tab      - Switch pending / abandoned
  ↑/k, ↓/j - Navigate operations
  r / x    - Retry / discard abandoned operation
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

var errNotTerminal = errors.New("tui requires an interactive terminal; use 'swapsync status' instead")

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	r, err := requireRuntime()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	// The dashboard is long-running, so it keeps connectivity and auto sync going.
	stopBackground := startBackground(ctx, r)
	defer stopBackground()

	go func() {
		if err := r.Status.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("status watcher stopped: %v", err)
		}
	}()
	defer r.Status.Stop()

	r.Sync.StartAutoSync(ctx, r.SyncInterval)
	defer r.Sync.StopAutoSync()

	app, err := tui.NewApp(tui.NewPorts(r.Status, r.Queue))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	// Verbose logs would corrupt the alternate screen.
	logger.SetVerbose(false)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
