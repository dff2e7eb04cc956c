// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// Tick fires on the dashboard poll interval.
type Tick struct {
	At time.Time
}

// SnapshotLoaded carries the refreshed sync state.
type SnapshotLoaded struct {
	Snapshot domain.SyncSnapshot
}

// QueueLoaded carries the pending and abandoned operations.
type QueueLoaded struct {
	Pending   []domain.PendingOperation
	Abandoned []domain.PendingOperation
	Err       error
}

// SyncRequested is sent when the user asks for a manual sync.
type SyncRequested struct{}

// SyncCompleted carries the outcome of a manual sync.
type SyncCompleted struct {
	Result domain.SyncResult
	Err    error
}

// OperationRequeued signals an abandoned operation was moved back to pending.
type OperationRequeued struct {
	ID  int64
	Err error
}

// OperationDiscarded signals an abandoned operation was dropped.
type OperationDiscarded struct {
	ID  int64
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewPending lists writes waiting to be replayed.
	ViewPending ViewType = iota
	// ViewAbandoned lists writes that exhausted their retries.
	ViewAbandoned
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewPending:
		return "pending"
	case ViewAbandoned:
		return "abandoned"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
