package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swapsync/swapsync-cli/internal/adapters/driving/tui/components/list"
	"github.com/swapsync/swapsync-cli/internal/adapters/driving/tui/components/status"
	"github.com/swapsync/swapsync-cli/internal/adapters/driving/tui/keymap"
	"github.com/swapsync/swapsync-cli/internal/adapters/driving/tui/messages"
	"github.com/swapsync/swapsync-cli/internal/adapters/driving/tui/styles"
	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// DefaultPollInterval is how often the dashboard refreshes its counts.
const DefaultPollInterval = 5 * time.Second

// headerHeight is the number of lines above the operation list.
const headerHeight = 9

// App is the sync dashboard following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	bar    *status.Bar

	pendingList   *list.OperationList
	abandonedList *list.OperationList

	spinner spinner.Model

	// snapshot is the last state reported by the status service.
	snapshot domain.SyncSnapshot

	pollInterval time.Duration

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when leaving help.
	previousView messages.ViewType

	// syncing is true while a manual sync started here is running.
	syncing bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new dashboard with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Primary)

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		bar:           status.NewBar(s, km),
		pendingList:   list.NewOperationList(s, "Pending", "No pending changes."),
		abandonedList: list.NewOperationList(s, "Abandoned", "No abandoned changes."),
		spinner:       sp,
		pollInterval:  DefaultPollInterval,
		currentView:   messages.ViewPending,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithPollInterval sets how often counts and the queue are refreshed.
// Non-positive values keep the default.
func (a *App) WithPollInterval(d time.Duration) *App {
	if d > 0 {
		a.pollInterval = d
	}
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("swapsync - sync status"),
		a.refresh(),
		a.loadQueue(),
		a.tick(),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case messages.Tick:
		return a, tea.Batch(a.refresh(), a.loadQueue(), a.tick())

	case messages.SnapshotLoaded:
		a.snapshot = msg.Snapshot
		a.bar.SetPending(msg.Snapshot.PendingCount)
		return a, nil

	case messages.QueueLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.pendingList.SetOperations(msg.Pending)
		a.abandonedList.SetOperations(msg.Abandoned)
		return a, nil

	case messages.SyncRequested:
		return a, a.startSync()

	case messages.SyncCompleted:
		a.syncing = false
		a.bar.Clear()
		a.syncBarState()
		switch {
		case errors.Is(msg.Err, domain.ErrNothingToSync):
			a.bar.SetMessage("Nothing to sync")
		case errors.Is(msg.Err, domain.ErrOffline):
			a.bar.SetMessage("Offline: changes stay queued")
		case msg.Err != nil:
			a.setError(msg.Err)
		default:
			a.err = nil
			a.bar.SetMessage("Sync complete: " + msg.Result.String())
		}
		return a, tea.Batch(a.refresh(), a.loadQueue())

	case messages.OperationRequeued:
		return a, a.afterQueueAction(msg.Err, fmt.Sprintf("Operation %d requeued", msg.ID))

	case messages.OperationDiscarded:
		return a, a.afterQueueAction(msg.Err, fmt.Sprintf("Operation %d discarded", msg.ID))

	case messages.ViewChanged:
		a.switchView(msg.View)
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.syncing {
			a.bar.SetSpinner(a.spinner.View())
		}
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if keymap.Matches(key, a.keymap.Quit) {
		return tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if keymap.Matches(key, a.keymap.Back) || keymap.Matches(key, a.keymap.Help) {
			a.switchView(a.previousView)
		}
		return nil
	}

	switch {
	case keymap.Matches(key, a.keymap.Help):
		a.switchView(messages.ViewHelp)
	case keymap.Matches(key, a.keymap.Switch):
		if a.currentView == messages.ViewPending {
			a.switchView(messages.ViewAbandoned)
		} else {
			a.switchView(messages.ViewPending)
		}
	case keymap.Matches(key, a.keymap.Sync):
		return a.startSync()
	case keymap.Matches(key, a.keymap.Refresh):
		return tea.Batch(a.refresh(), a.loadQueue())
	case keymap.Matches(key, a.keymap.Retry):
		return a.queueAction(a.requeue)
	case keymap.Matches(key, a.keymap.Discard):
		return a.queueAction(a.discard)
	default:
		a.activeList().Update(msg)
	}
	return nil
}

// startSync begins a manual sync when the state allows it.
func (a *App) startSync() tea.Cmd {
	if a.syncing {
		return nil
	}
	if !a.snapshot.CanSyncNow() {
		a.bar.SetMessage(a.syncUnavailableReason())
		return nil
	}

	a.syncing = true
	a.bar.SetState(status.StateSyncing)
	a.bar.SetSpinner(a.spinner.View())

	ctx, svc := a.ctx, a.ports.Status
	return func() tea.Msg {
		res, err := svc.SyncNow(ctx)
		return messages.SyncCompleted{Result: res, Err: err}
	}
}

func (a *App) syncUnavailableReason() string {
	switch {
	case !a.snapshot.Online:
		return "Offline: sync resumes when the backend is reachable"
	case a.snapshot.Syncing:
		return "A sync is already running"
	default:
		return "Nothing to sync"
	}
}

// queueAction runs fn on the selected abandoned operation.
func (a *App) queueAction(fn func(id int64) tea.Cmd) tea.Cmd {
	if a.currentView != messages.ViewAbandoned {
		return nil
	}
	op := a.abandonedList.SelectedOperation()
	if op == nil {
		return nil
	}
	return fn(op.ID)
}

func (a *App) requeue(id int64) tea.Cmd {
	ctx, svc := a.ctx, a.ports.Queue
	return func() tea.Msg {
		return messages.OperationRequeued{ID: id, Err: svc.Requeue(ctx, id)}
	}
}

func (a *App) discard(id int64) tea.Cmd {
	ctx, svc := a.ctx, a.ports.Queue
	return func() tea.Msg {
		return messages.OperationDiscarded{ID: id, Err: svc.Discard(ctx, id)}
	}
}

func (a *App) afterQueueAction(err error, done string) tea.Cmd {
	if err != nil {
		a.setError(err)
		return nil
	}
	a.err = nil
	a.bar.Clear()
	a.syncBarState()
	a.bar.SetMessage(done)
	return tea.Batch(a.refresh(), a.loadQueue())
}

// refresh reloads the status snapshot.
func (a *App) refresh() tea.Cmd {
	ctx, svc := a.ctx, a.ports.Status
	return func() tea.Msg {
		svc.Refresh(ctx)
		return messages.SnapshotLoaded{Snapshot: svc.Snapshot()}
	}
}

// loadQueue reloads both operation lists.
func (a *App) loadQueue() tea.Cmd {
	ctx, svc := a.ctx, a.ports.Queue
	return func() tea.Msg {
		pending, err := svc.ListPending(ctx)
		if err != nil {
			return messages.QueueLoaded{Err: err}
		}
		abandoned, err := svc.ListAbandoned(ctx)
		if err != nil {
			return messages.QueueLoaded{Err: err}
		}
		return messages.QueueLoaded{Pending: pending, Abandoned: abandoned}
	}
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.pollInterval, func(t time.Time) tea.Msg {
		return messages.Tick{At: t}
	})
}

func (a *App) switchView(view messages.ViewType) {
	if view == messages.ViewHelp && a.currentView != messages.ViewHelp {
		a.previousView = a.currentView
	}
	a.currentView = view
	a.syncBarState()
}

// syncBarState matches the status bar hints to the active view.
func (a *App) syncBarState() {
	if a.syncing || a.bar.State() == status.StateError {
		return
	}
	switch a.currentView {
	case messages.ViewAbandoned:
		a.bar.SetState(status.StateAbandoned)
	case messages.ViewHelp:
		a.bar.SetState(status.StateHelp)
	default:
		a.bar.SetState(status.StateReady)
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.bar.SetState(status.StateError)
	a.bar.SetMessage(err.Error())
}

func (a *App) activeList() *list.OperationList {
	if a.currentView == messages.ViewAbandoned {
		return a.abandonedList
	}
	return a.pendingList
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.viewHelp() + "\n" + a.bar.View()
	}

	sections := []string{
		a.viewHeader(),
		a.viewCounters(),
		a.viewTabs(),
		a.activeList().View(),
	}
	body := strings.Join(sections, "\n")

	gap := a.height - lipgloss.Height(body) - 1
	if gap < 1 {
		gap = 1
	}
	return body + strings.Repeat("\n", gap) + a.bar.View()
}

func (a *App) viewHeader() string {
	return a.styles.Title.Render("SwapSync") + "  " + a.styles.ConnectivityBadge(a.snapshot.Online)
}

func (a *App) viewCounters() string {
	lastSync := "never"
	if !a.snapshot.LastSyncAt.IsZero() {
		lastSync = a.snapshot.LastSyncAt.Local().Format(time.Kitchen)
	}
	lastResult := "-"
	if a.snapshot.LastResult != nil {
		lastResult = a.snapshot.LastResult.String()
	}

	syncing := "idle"
	if a.syncing || a.snapshot.Syncing {
		syncing = a.spinner.View() + " syncing"
	}

	abandoned := a.styles.Normal.Render(fmt.Sprintf("%d", a.snapshot.AbandonedCount))
	if a.snapshot.AbandonedCount > 0 {
		abandoned = a.styles.Warning.Render(fmt.Sprintf("%d", a.snapshot.AbandonedCount))
	}

	lines := []string{
		a.styles.Muted.Render("Pending    ") + a.styles.Normal.Render(fmt.Sprintf("%d", a.snapshot.PendingCount)),
		a.styles.Muted.Render("Abandoned  ") + abandoned,
		a.styles.Muted.Render("Last sync  ") + a.styles.Normal.Render(lastSync+"  ("+lastResult+")"),
		a.styles.Muted.Render("Sync       ") + a.styles.Normal.Render(syncing),
	}
	return a.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (a *App) viewTabs() string {
	pending := fmt.Sprintf("Pending (%d)", a.pendingList.Count())
	abandoned := fmt.Sprintf("Abandoned (%d)", a.abandonedList.Count())
	if a.currentView == messages.ViewAbandoned {
		return a.styles.Tab.Render(pending) + a.styles.ActiveTab.Render(abandoned)
	}
	return a.styles.ActiveTab.Render(pending) + a.styles.Tab.Render(abandoned)
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Dashboard:
  s           Sync now (when online with pending changes)
  tab         Switch between pending and abandoned
  j/k, ↑/↓    Navigate operations
  ctrl+r      Refresh now

Abandoned:
  r           Move the selected operation back to pending
  x           Discard the selected operation

General:
  ?           Toggle help
  q, ctrl+c   Quit

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Snapshot returns the last loaded sync state.
func (a *App) Snapshot() domain.SyncSnapshot {
	return a.snapshot
}

// Syncing reports whether a manual sync started from the dashboard is running.
func (a *App) Syncing() bool {
	return a.syncing
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.bar.SetWidth(width)

	listHeight := height - headerHeight - 1
	if listHeight < 2 {
		listHeight = 2
	}
	a.pendingList.SetDimensions(width, listHeight)
	a.abandonedList.SetDimensions(width, listHeight)
}
