package driving

import (
	"context"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// SyncManager replays queued operations against the server.
type SyncManager interface {
	// SyncAll drains the pending queue and pushes offline-created records.
	// Returns a zero result if a pass is already running or the client is offline.
	SyncAll(ctx context.Context) domain.SyncResult

	// StartAutoSync runs SyncAll every interval while online.
	// Calling it again replaces the running timer.
	StartAutoSync(ctx context.Context, interval time.Duration)

	// StopAutoSync cancels future timer firings. A pass in flight is not aborted.
	StopAutoSync()

	// PendingCount returns the current queue depth.
	PendingCount(ctx context.Context) (int, error)

	// Syncing reports whether a pass is in flight.
	Syncing() bool
}

// QueueService exposes the pending queue for inspection and repair.
type QueueService interface {
	// ListPending returns pending operations oldest first.
	ListPending(ctx context.Context) ([]domain.PendingOperation, error)

	// ListAbandoned returns operations that exceeded the retry ceiling.
	ListAbandoned(ctx context.Context) ([]domain.PendingOperation, error)

	// Requeue moves an abandoned operation back to pending with zero retries.
	Requeue(ctx context.Context, id int64) error

	// Discard permanently removes an abandoned operation.
	Discard(ctx context.Context, id int64) error
}
