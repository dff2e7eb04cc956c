package domain

import (
	"fmt"
	"time"
)

// SyncResult is the outcome of one SyncAll pass.
type SyncResult struct {
	// Success counts queued operations and cached records confirmed by the server.
	Success int

	// Failed counts replay attempts that failed during this pass.
	Failed int

	// Abandoned counts operations moved past the retry ceiling during this pass.
	Abandoned int
}

// Add accumulates another result into r.
func (r *SyncResult) Add(other SyncResult) {
	r.Success += other.Success
	r.Failed += other.Failed
	r.Abandoned += other.Abandoned
}

// String renders the counts for humans.
func (r SyncResult) String() string {
	s := fmt.Sprintf("%d succeeded, %d failed", r.Success, r.Failed)
	if r.Abandoned > 0 {
		s += fmt.Sprintf(", %d abandoned", r.Abandoned)
	}
	return s
}

// ConnectivityState is the last observed reachability of the server.
type ConnectivityState string

const (
	ConnectivityOnline  ConnectivityState = "online"
	ConnectivityOffline ConnectivityState = "offline"
)

// ConnectivityEvent is emitted on every online/offline transition.
type ConnectivityEvent struct {
	State ConnectivityState
	At    time.Time
}

// Online reports whether the event is an online transition.
func (e ConnectivityEvent) Online() bool {
	return e.State == ConnectivityOnline
}

// SyncSnapshot is the UI-facing view of the sync layer.
type SyncSnapshot struct {
	Online         bool
	Syncing        bool
	PendingCount   int
	AbandonedCount int
	LastResult     *SyncResult
	LastSyncAt     time.Time
}

// CanSyncNow reports whether the manual "Sync Now" action is available.
func (s SyncSnapshot) CanSyncNow() bool {
	return s.Online && !s.Syncing && s.PendingCount > 0
}
