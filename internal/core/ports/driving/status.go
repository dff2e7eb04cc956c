package driving

import (
	"context"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// StatusService is the UI-facing connectivity and sync signal.
type StatusService interface {
	// Start consumes connectivity events and polls the pending count
	// until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop ends the watcher loop.
	Stop()

	// Refresh reloads the pending and abandoned counts.
	Refresh(ctx context.Context)

	// Snapshot returns the current UI state.
	Snapshot() domain.SyncSnapshot

	// SyncNow runs a manual sync when online with pending operations.
	SyncNow(ctx context.Context) (domain.SyncResult, error)
}
