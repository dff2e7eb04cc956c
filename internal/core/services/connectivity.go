package services

import (
	"context"
	"sync"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driving"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

// Ensure ConnectivityWatcher implements the interface.
var _ driving.StatusService = (*ConnectivityWatcher)(nil)

// DefaultPollInterval is how often the pending count is refreshed for display.
const DefaultPollInterval = 5 * time.Second

var watchLog = logger.Scope("connectivity")

// SyncEngine is the part of SyncManager the watcher drives and reports on.
type SyncEngine interface {
	driving.SyncManager
	AbandonedCount(ctx context.Context) (int, error)
	LastSyncAt(ctx context.Context) (time.Time, error)
}

// ConnectivityWatcher reacts to connectivity transitions: going online
// triggers a sync pass, going offline only flips the displayed state. It
// also polls the queue depth so the UI stays current.
type ConnectivityWatcher struct {
	engine       SyncEngine
	conn         driven.Connectivity
	pollInterval time.Duration

	stateMu  sync.RWMutex
	snapshot domain.SyncSnapshot
	syncing  bool

	// Serialises sync passes triggered by events and SyncNow.
	syncMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewConnectivityWatcher creates a watcher. A non-positive pollInterval uses
// DefaultPollInterval.
func NewConnectivityWatcher(engine SyncEngine, conn driven.Connectivity, pollInterval time.Duration) *ConnectivityWatcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &ConnectivityWatcher{
		engine:       engine,
		conn:         conn,
		pollInterval: pollInterval,
	}
}

// Start consumes connectivity events and polls the queue until ctx is
// cancelled or Stop is called, blocking until then. If the watcher is already
// running it returns nil at once. Work queued while nobody was listening is
// synced on entry when the connection is already up.
func (w *ConnectivityWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	events, unsubscribe := w.conn.Subscribe()
	defer unsubscribe()

	w.Refresh(ctx)
	if snap := w.Snapshot(); snap.Online && snap.PendingCount > 0 {
		watchLog.Info("online with %d pending, syncing", snap.PendingCount)
		res := w.runSync(ctx)
		watchLog.Info("startup sync: %s", res)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case <-ticker.C:
			w.Refresh(ctx)
		}
	}
}

// Stop ends the watcher loop.
func (w *ConnectivityWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
}

// Snapshot returns the current UI state.
func (w *ConnectivityWatcher) Snapshot() domain.SyncSnapshot {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()

	snap := w.snapshot
	snap.Syncing = w.syncing || w.engine.Syncing()
	if snap.LastResult != nil {
		res := *snap.LastResult
		snap.LastResult = &res
	}
	return snap
}

// SyncNow runs a manual pass. It is only available when online with a
// nonzero pending count and no pass running.
func (w *ConnectivityWatcher) SyncNow(ctx context.Context) (domain.SyncResult, error) {
	w.Refresh(ctx)

	snap := w.Snapshot()
	switch {
	case !snap.Online:
		return domain.SyncResult{}, domain.ErrOffline
	case snap.Syncing:
		return domain.SyncResult{}, domain.ErrSyncInProgress
	case snap.PendingCount == 0:
		return domain.SyncResult{}, domain.ErrNothingToSync
	}

	return w.runSync(ctx), nil
}

// Refresh reloads connectivity, the pending and abandoned counts and the
// last sync time.
func (w *ConnectivityWatcher) Refresh(ctx context.Context) {
	w.setOnline(w.conn.Online())

	pending, err := w.engine.PendingCount(ctx)
	if err != nil {
		watchLog.Warn("pending count: %v", err)
		return
	}
	abandoned, err := w.engine.AbandonedCount(ctx)
	if err != nil {
		watchLog.Warn("abandoned count: %v", err)
		return
	}
	lastSync, err := w.engine.LastSyncAt(ctx)
	if err != nil {
		watchLog.Warn("last sync time: %v", err)
	}

	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	w.snapshot.PendingCount = pending
	w.snapshot.AbandonedCount = abandoned
	if err == nil {
		w.snapshot.LastSyncAt = lastSync
	}
}

func (w *ConnectivityWatcher) handle(ctx context.Context, ev domain.ConnectivityEvent) {
	w.setOnline(ev.Online())
	if !ev.Online() {
		watchLog.Info("offline since %s", ev.At.Format(time.Kitchen))
		return
	}

	watchLog.Info("back online, syncing")
	res := w.runSync(ctx)
	watchLog.Info("reconnect sync: %s", res)
}

// runSync sets the syncing flag around one SyncAll pass.
func (w *ConnectivityWatcher) runSync(ctx context.Context) domain.SyncResult {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	w.setSyncing(true)
	defer w.setSyncing(false)

	res := w.engine.SyncAll(ctx)

	w.stateMu.Lock()
	w.snapshot.LastResult = &res
	w.stateMu.Unlock()

	w.Refresh(ctx)
	return res
}

func (w *ConnectivityWatcher) setOnline(online bool) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	w.snapshot.Online = online
}

func (w *ConnectivityWatcher) setSyncing(syncing bool) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	w.syncing = syncing
}
