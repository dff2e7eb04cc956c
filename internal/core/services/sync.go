package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driving"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

// Ensure SyncManager implements the interfaces.
var (
	_ driving.SyncManager  = (*SyncManager)(nil)
	_ driving.QueueService = (*SyncManager)(nil)
)

// DefaultAutoSyncInterval is used when StartAutoSync receives a non-positive interval.
const DefaultAutoSyncInterval = 30 * time.Second

var syncLog = logger.Scope("sync")

// SyncDeps groups the ports a SyncManager drives.
type SyncDeps struct {
	Records      driven.RecordStore
	Queue        driven.OperationQueue
	Settings     driven.SettingsStore
	IDs          driven.IDMapStore
	Remote       driven.RemoteAPI
	Connectivity driven.Connectivity

	// RetryCeiling is the number of failed replays tolerated before an
	// operation is abandoned. Defaults to domain.DefaultRetryCeiling.
	RetryCeiling int
}

// SyncManager replays the pending operation queue against the server and
// pushes offline-created records. One instance owns the in-flight flag and
// the auto-sync timer.
type SyncManager struct {
	records      driven.RecordStore
	queue        driven.OperationQueue
	settings     driven.SettingsStore
	ids          driven.IDMapStore
	remote       driven.RemoteAPI
	conn         driven.Connectivity
	retryCeiling int

	inFlight atomic.Bool

	// Auto-sync timer
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	now func() time.Time
}

// NewSyncManager creates a sync manager.
func NewSyncManager(deps SyncDeps) *SyncManager {
	ceiling := deps.RetryCeiling
	if ceiling <= 0 {
		ceiling = domain.DefaultRetryCeiling
	}
	return &SyncManager{
		records:      deps.Records,
		queue:        deps.Queue,
		settings:     deps.Settings,
		ids:          deps.IDs,
		remote:       deps.Remote,
		conn:         deps.Connectivity,
		retryCeiling: ceiling,
		now:          time.Now,
	}
}

// SyncAll drains the queue oldest first and then pushes offline-created
// records. It returns a zero result when offline or when another pass is in
// flight. Per-operation failures feed the retry path; a storage failure ends
// the pass early with the counts accumulated so far.
func (m *SyncManager) SyncAll(ctx context.Context) domain.SyncResult {
	if !m.conn.Online() {
		syncLog.Debug("offline, skipping pass")
		return domain.SyncResult{}
	}
	if !m.inFlight.CompareAndSwap(false, true) {
		syncLog.Debug("pass already in flight")
		return domain.SyncResult{}
	}
	defer m.inFlight.Store(false)

	logger.Section("Sync")

	result, err := m.drainQueue(ctx)
	if err != nil {
		syncLog.Error("queue drain ended early: %v", err)
		return result
	}

	cached, err := m.syncCachedData(ctx)
	result.Add(cached)
	if err != nil {
		syncLog.Error("cached data pass ended early: %v", err)
		return result
	}

	if err := m.settings.SetSetting(ctx, domain.SettingLastSyncAt, m.now().UTC()); err != nil {
		syncLog.Warn("recording last sync time: %v", err)
	}

	syncLog.Info("pass complete: %d succeeded, %d failed, %d abandoned",
		result.Success, result.Failed, result.Abandoned)
	return result
}

// Syncing reports whether a pass is in flight.
func (m *SyncManager) Syncing() bool {
	return m.inFlight.Load()
}

// PendingCount returns the number of pending operations.
func (m *SyncManager) PendingCount(ctx context.Context) (int, error) {
	return m.queue.Count(ctx)
}

// AbandonedCount returns the number of operations past the retry ceiling.
func (m *SyncManager) AbandonedCount(ctx context.Context) (int, error) {
	ops, err := m.queue.ListAbandoned(ctx)
	if err != nil {
		return 0, err
	}
	return len(ops), nil
}

// LastSyncAt returns when the last complete pass finished, or the zero time.
func (m *SyncManager) LastSyncAt(ctx context.Context) (time.Time, error) {
	var at time.Time
	if _, err := m.settings.GetSetting(ctx, domain.SettingLastSyncAt, &at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// drainQueue replays every pending operation in insertion order.
func (m *SyncManager) drainQueue(ctx context.Context) (domain.SyncResult, error) {
	var result domain.SyncResult

	ops, err := m.queue.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list pending operations: %w", err)
	}
	syncLog.Debug("draining %d pending operations", len(ops))

	for i := range ops {
		op := ops[i]
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := m.replay(ctx, &op); err != nil {
			result.Failed++
			if m.recordFailure(&op, err) {
				result.Abandoned++
			}
			if uerr := m.queue.Update(ctx, op); uerr != nil {
				return result, fmt.Errorf("update operation %d: %w", op.ID, uerr)
			}
			continue
		}

		if err := m.queue.Delete(ctx, op.ID); err != nil {
			return result, fmt.Errorf("delete operation %d: %w", op.ID, err)
		}
		result.Success++
		syncLog.Debug("%s %s #%d replayed", op.Type, op.Resource, op.RecordID)
	}

	return result, nil
}

// recordFailure bumps the retry count and abandons the operation once it
// exceeds the ceiling. It reports whether the operation was abandoned.
func (m *SyncManager) recordFailure(op *domain.PendingOperation, cause error) bool {
	op.Retries++
	op.LastError = cause.Error()

	if !op.ExceedsCeiling(m.retryCeiling) {
		syncLog.Debug("%s %s #%d failed (retry %d): %v", op.Type, op.Resource, op.RecordID, op.Retries, cause)
		return false
	}

	op.Status = domain.OperationAbandoned
	syncLog.Warn("abandoning %s %s #%d after %d failed attempts: %v",
		op.Type, op.Resource, op.RecordID, op.Retries, cause)
	return true
}

// replay sends one operation to the server and applies the result locally.
// Only a rejected or unsent request is an error: once the server has accepted
// the operation it must leave the queue, or the next pass would send it again.
func (m *SyncManager) replay(ctx context.Context, op *domain.PendingOperation) error {
	opt := driven.WithIdempotencyKey(op.IdempotencyKey)
	payload := withoutID(op.Data)

	switch op.Type {
	case domain.OperationCreate:
		out, err := m.remote.Create(ctx, op.Resource, payload, opt)
		if err != nil {
			return err
		}
		m.settle(op, m.confirmCreate(ctx, op.Resource, op.RecordID, payload, out))
		return nil

	case domain.OperationUpdate:
		id, err := m.resolveID(ctx, op.Resource, op.RecordID)
		if err != nil {
			return err
		}
		out, err := m.remote.Update(ctx, op.Resource, id, payload, opt)
		if err != nil {
			return err
		}
		m.settle(op, m.confirmUpdate(ctx, op.Resource, id, payload, out))
		return nil

	case domain.OperationDelete:
		id, err := m.resolveID(ctx, op.Resource, op.RecordID)
		if err != nil {
			return err
		}
		if err := m.remote.Delete(ctx, op.Resource, id, opt); err != nil {
			return err
		}
		m.settle(op, m.records.Delete(ctx, op.Resource, id))
		return nil

	default:
		return fmt.Errorf("%w: operation type %q", domain.ErrInvalidInput, op.Type)
	}
}

// settle logs a local write that failed after the server accepted op. The
// cached data pass repairs a CREATE whose id mapping was saved.
func (m *SyncManager) settle(op *domain.PendingOperation, err error) {
	if err != nil {
		syncLog.Error("%s %s #%d accepted by server but not applied locally: %v",
			op.Type, op.Resource, op.RecordID, err)
	}
}

// resolveID maps a locally minted id to the server id assigned on CREATE.
func (m *SyncManager) resolveID(ctx context.Context, resource domain.Resource, id int64) (int64, error) {
	return resolveRecordID(ctx, m.ids, resource, id)
}

// confirmCreate records the local-to-server id mapping and re-keys the local
// copy under the server id as synced.
func (m *SyncManager) confirmCreate(
	ctx context.Context, resource domain.Resource, localID int64, sent, out domain.Fields,
) error {
	serverID, ok := out.ID()
	if !ok {
		// Server did not echo an id; keep the local copy but stop re-pushing it.
		if localID != 0 {
			return m.markConfirmed(ctx, resource, localID)
		}
		return nil
	}

	if domain.IsLocalID(localID) {
		if err := m.ids.SaveMapping(ctx, domain.IDMapping{
			Resource:  resource,
			LocalID:   localID,
			ServerID:  serverID,
			CreatedAt: m.now(),
		}); err != nil {
			return fmt.Errorf("save id mapping: %w", err)
		}
	}
	return m.rekey(ctx, resource, localID, confirmed(serverID, sent, out))
}

// rekey replaces the local copy stored under localID with rec.
func (m *SyncManager) rekey(ctx context.Context, resource domain.Resource, localID int64, rec domain.Tracked) error {
	if localID != 0 && localID != rec.ID {
		if err := m.records.Delete(ctx, resource, localID); err != nil {
			return err
		}
	}
	return m.records.Update(ctx, resource, rec)
}

func (m *SyncManager) confirmUpdate(ctx context.Context, resource domain.Resource, id int64, sent, out domain.Fields) error {
	return m.records.Update(ctx, resource, confirmed(id, sent, out))
}

// markConfirmed flags an existing record as synced and server-known.
func (m *SyncManager) markConfirmed(ctx context.Context, resource domain.Resource, id int64) error {
	rec, err := m.records.Get(ctx, resource, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	rec.Synced = true
	rec.OfflineCreated = false
	return m.records.Update(ctx, resource, *rec)
}

// syncCachedData pushes records still flagged offline_created that have no
// CREATE operation of their own left in the queue.
func (m *SyncManager) syncCachedData(ctx context.Context) (domain.SyncResult, error) {
	var result domain.SyncResult

	queued, err := m.queuedCreates(ctx)
	if err != nil {
		return result, err
	}

	for _, resource := range domain.AllResources() {
		recs, err := m.records.GetUnsynced(ctx, resource)
		if err != nil {
			return result, fmt.Errorf("list unsynced %s: %w", resource, err)
		}

		for _, rec := range recs {
			if !rec.OfflineCreated || queued[recordKey{resource, rec.ID}] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}

			// Accepted on an earlier pass whose local write failed.
			if domain.IsLocalID(rec.ID) {
				serverID, ok, err := m.ids.Resolve(ctx, resource, rec.ID)
				if err != nil {
					return result, fmt.Errorf("resolve %s #%d: %w", resource, rec.ID, err)
				}
				if ok {
					if err := m.rekey(ctx, resource, rec.ID, confirmed(serverID, rec.Fields, nil)); err != nil {
						return result, err
					}
					syncLog.Debug("re-keyed %s #%d as #%d", resource, rec.ID, serverID)
					continue
				}
			}

			payload := withoutID(rec.Fields)
			out, err := m.remote.Create(ctx, resource, payload)
			if err != nil {
				result.Failed++
				syncLog.Debug("push %s #%d failed: %v", resource, rec.ID, err)
				continue
			}
			if err := m.confirmCreate(ctx, resource, rec.ID, payload, out); err != nil {
				return result, err
			}
			result.Success++
			syncLog.Debug("pushed offline %s #%d", resource, rec.ID)
		}
	}

	return result, nil
}

type recordKey struct {
	resource domain.Resource
	id       int64
}

// queuedCreates indexes the records that a pending or abandoned CREATE still owns.
func (m *SyncManager) queuedCreates(ctx context.Context) (map[recordKey]bool, error) {
	pending, err := m.queue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending operations: %w", err)
	}
	abandoned, err := m.queue.ListAbandoned(ctx)
	if err != nil {
		return nil, fmt.Errorf("list abandoned operations: %w", err)
	}

	owned := make(map[recordKey]bool)
	for _, op := range append(pending, abandoned...) {
		if op.Type == domain.OperationCreate && op.RecordID != 0 {
			owned[recordKey{op.Resource, op.RecordID}] = true
		}
	}
	return owned, nil
}

// StartAutoSync runs SyncAll every interval while online. A running timer is
// replaced.
func (m *SyncManager) StartAutoSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultAutoSyncInterval
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		close(m.stopCh)
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.wg.Add(1)
	go m.autoSyncLoop(ctx, interval, m.stopCh)
	syncLog.Debug("auto sync every %s", interval)
}

// StopAutoSync cancels future firings. A pass already running completes.
func (m *SyncManager) StopAutoSync() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *SyncManager) autoSyncLoop(ctx context.Context, interval time.Duration, stopCh chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if m.conn.Online() {
				m.SyncAll(ctx)
			}
		}
	}
}

// ListPending returns pending operations oldest first.
func (m *SyncManager) ListPending(ctx context.Context) ([]domain.PendingOperation, error) {
	return m.queue.List(ctx)
}

// ListAbandoned returns operations that exceeded the retry ceiling.
func (m *SyncManager) ListAbandoned(ctx context.Context) ([]domain.PendingOperation, error) {
	return m.queue.ListAbandoned(ctx)
}

// Requeue moves an abandoned operation back to pending with zero retries.
func (m *SyncManager) Requeue(ctx context.Context, id int64) error {
	op, err := m.abandoned(ctx, id)
	if err != nil {
		return err
	}
	op.Status = domain.OperationPending
	op.Retries = 0
	op.LastError = ""
	return m.queue.Update(ctx, *op)
}

// Discard permanently removes an abandoned operation.
func (m *SyncManager) Discard(ctx context.Context, id int64) error {
	if _, err := m.abandoned(ctx, id); err != nil {
		return err
	}
	return m.queue.Delete(ctx, id)
}

func (m *SyncManager) abandoned(ctx context.Context, id int64) (*domain.PendingOperation, error) {
	op, err := m.queue.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if op.Status != domain.OperationAbandoned {
		return nil, fmt.Errorf("%w: operation %d", domain.ErrNotAbandoned, id)
	}
	return op, nil
}

// resolveRecordID returns id unchanged unless it is locally minted, in which
// case the mapping recorded on CREATE is required.
func resolveRecordID(ctx context.Context, ids driven.IDMapStore, resource domain.Resource, id int64) (int64, error) {
	if !domain.IsLocalID(id) {
		return id, nil
	}
	serverID, ok, err := ids.Resolve(ctx, resource, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s #%d", domain.ErrUnresolvedLocalID, resource, id)
	}
	return serverID, nil
}

// confirmed builds the synced local copy of a server-acknowledged record,
// preferring the server's response body over what was sent.
func confirmed(id int64, sent, out domain.Fields) domain.Tracked {
	fields := sent
	if len(out) > 0 {
		fields = out
	}
	return domain.Tracked{
		ID:     id,
		Fields: withoutID(fields),
		Synced: true,
	}
}

func withoutID(fields domain.Fields) domain.Fields {
	out := fields.Clone()
	delete(out, "id")
	return out
}
