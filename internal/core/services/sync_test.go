package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

func enqueue(t *testing.T, h *harness, op domain.PendingOperation) int64 {
	t.Helper()
	id, err := h.queue.Add(context.Background(), op)
	require.NoError(t, err)
	return id
}

func TestSyncAll_ConcreteCreateScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	enqueue(t, h, domain.PendingOperation{
		Type:     domain.OperationCreate,
		Resource: domain.ResourceCustomers,
		Data:     domain.Fields{"full_name": "Ama Boateng", "phone_number": "0241234567"},
	})

	before, err := h.sync.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, before)

	res := h.sync.SyncAll(ctx)

	assert.Equal(t, domain.SyncResult{Success: 1, Failed: 0}, res)
	after, err := h.sync.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, after)

	calls := h.remote.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "POST", calls[0].Method)
	assert.NotEmpty(t, calls[0].IdempotencyKey)

	last, err := h.sync.LastSyncAt(ctx)
	require.NoError(t, err)
	assert.False(t, last.IsZero())
}

func TestSyncAll_NoopWhenOffline(t *testing.T) {
	h := newHarness(false)
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourcePhones})

	res := h.sync.SyncAll(context.Background())

	assert.Equal(t, domain.SyncResult{}, res)
	assert.Empty(t, h.remote.recorded())
}

func TestSyncAll_DrainsInInsertionOrder(t *testing.T) {
	h := newHarness(true)
	for _, id := range []int64{1, 2, 3} {
		h.remote.seed(domain.ResourcePhones, id, domain.Fields{"model": "old"})
	}
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationUpdate, Resource: domain.ResourcePhones, RecordID: 1, Data: domain.Fields{"model": "a"}})
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourcePhones, RecordID: 3})
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationUpdate, Resource: domain.ResourcePhones, RecordID: 2, Data: domain.Fields{"model": "b"}})

	res := h.sync.SyncAll(context.Background())
	assert.Equal(t, 3, res.Success)

	calls := h.remote.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, []int64{1, 3, 2}, []int64{calls[0].ID, calls[1].ID, calls[2].ID})
	assert.Equal(t, []string{"PUT", "DELETE", "PUT"}, []string{calls[0].Method, calls[1].Method, calls[2].Method})
}

func TestSyncAll_FailureDoesNotAbortDrain(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	h.remote.seed(domain.ResourceSales, 5, domain.Fields{})
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceSales, RecordID: 404})
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceSales, RecordID: 5})

	res := h.sync.SyncAll(ctx)

	assert.Equal(t, domain.SyncResult{Success: 1, Failed: 1}, res)
	pending, err := h.sync.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(404), pending[0].RecordID)
	assert.Equal(t, 1, pending[0].Retries)
	assert.Contains(t, pending[0].LastError, "not found")
}

func TestSyncAll_AbandonsAfterRetryCeiling(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceRepairs, RecordID: 999})

	for pass := 1; pass <= 5; pass++ {
		res := h.sync.SyncAll(ctx)
		assert.Equal(t, 1, res.Failed, "pass %d", pass)
		assert.Equal(t, 0, res.Abandoned, "pass %d", pass)
		count, err := h.sync.PendingCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "pass %d", pass)
	}

	sixth := h.sync.SyncAll(ctx)
	assert.GreaterOrEqual(t, sixth.Failed, 1)
	assert.Equal(t, 1, sixth.Abandoned)

	count, err := h.sync.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	abandoned, err := h.sync.ListAbandoned(ctx)
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, 6, abandoned[0].Retries)

	callsBefore := len(h.remote.recorded())
	seventh := h.sync.SyncAll(ctx)
	assert.Equal(t, domain.SyncResult{}, seventh)
	assert.Len(t, h.remote.recorded(), callsBefore)
}

func TestSyncAll_CustomRetryCeiling(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	h.sync.retryCeiling = 1
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceRepairs, RecordID: 999})

	assert.Equal(t, 0, h.sync.SyncAll(ctx).Abandoned)
	assert.Equal(t, 1, h.sync.SyncAll(ctx).Abandoned)
}

func TestSyncAll_MutualExclusion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourceSwaps, Data: domain.Fields{"n": 1}})

	h.remote.block = make(chan struct{})
	h.remote.entered = make(chan struct{}, 1)

	var first domain.SyncResult
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = h.sync.SyncAll(ctx)
	}()

	<-h.remote.entered
	assert.True(t, h.sync.Syncing())

	second := h.sync.SyncAll(ctx)
	assert.Equal(t, domain.SyncResult{}, second)

	close(h.remote.block)
	wg.Wait()

	assert.Equal(t, 1, first.Success)
	assert.Len(t, h.remote.recorded(), 1)
	assert.False(t, h.sync.Syncing())
}

func TestSyncAll_EnumerationFailureEndsPassEarly(t *testing.T) {
	h := newHarness(true)
	h.queue.FailListWith(errors.New("database is locked"))

	res := h.sync.SyncAll(context.Background())

	assert.Equal(t, domain.SyncResult{}, res)
	assert.False(t, h.sync.Syncing())
}

func TestSyncAll_StorageFailureMidDrainKeepsPartialCounts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	h.remote.seed(domain.ResourceSales, 1, domain.Fields{})
	h.remote.seed(domain.ResourceSales, 2, domain.Fields{})
	h.remote.seed(domain.ResourceSales, 3, domain.Fields{})
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceSales, RecordID: 1})
	stuck := enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceSales, RecordID: 2})
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceSales, RecordID: 3})
	h.queue.FailDeleteWith(stuck, errors.New("disk I/O error"))

	res := h.sync.SyncAll(ctx)

	assert.Equal(t, domain.SyncResult{Success: 1}, res)
	assert.Equal(t, 2, h.remote.count("DELETE"))
	assert.False(t, h.sync.Syncing())

	last, err := h.sync.LastSyncAt(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	pending, err := h.sync.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, []int64{2, 3}, []int64{pending[0].RecordID, pending[1].RecordID})
	assert.Zero(t, pending[0].Retries)
}

func TestSyncAll_LocalWriteFailureAfterServerAcceptDoesNotResend(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)

	created, err := h.api.Create(ctx, domain.ResourceCustomers, domain.Fields{"full_name": "Esi"})
	require.NoError(t, err)
	localID, _ := created.ID()

	h.conn.SetOnline(true)
	h.records.FailWith(errors.New("disk full"))
	first := h.sync.SyncAll(ctx)
	assert.Equal(t, domain.SyncResult{Success: 1}, first)

	pending, err := h.sync.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	last, err := h.sync.LastSyncAt(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	h.records.FailWith(nil)
	second := h.sync.SyncAll(ctx)
	assert.Equal(t, domain.SyncResult{}, second)

	assert.Equal(t, 1, h.remote.count("POST"))
	assert.Equal(t, 1, h.remote.rowCount(domain.ResourceCustomers))

	_, err = h.records.Get(ctx, domain.ResourceCustomers, localID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	rec, err := h.records.Get(ctx, domain.ResourceCustomers, 42)
	require.NoError(t, err)
	assert.True(t, rec.Synced)
	assert.Equal(t, "Esi", rec.Fields["full_name"])
}

func TestSyncAll_SequentialOfflineCreatesKeepDistinctServerRows(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)

	a, err := h.api.Create(ctx, domain.ResourceCustomers, domain.Fields{"full_name": "A"})
	require.NoError(t, err)
	aLocal, _ := a.ID()

	h.conn.SetOnline(true)
	require.Equal(t, domain.SyncResult{Success: 1}, h.sync.SyncAll(ctx))
	h.conn.SetOnline(false)

	b, err := h.api.Create(ctx, domain.ResourceCustomers, domain.Fields{"full_name": "B"})
	require.NoError(t, err)
	bLocal, _ := b.ID()
	require.True(t, domain.IsLocalID(bLocal))
	assert.NotEqual(t, aLocal, bLocal)

	_, err = h.api.Update(ctx, domain.ResourceCustomers, bLocal, domain.Fields{"full_name": "B2"})
	require.NoError(t, err)

	h.conn.SetOnline(true)
	assert.Equal(t, domain.SyncResult{Success: 2}, h.sync.SyncAll(ctx))

	rowA, ok := h.remote.row(domain.ResourceCustomers, 42)
	require.True(t, ok)
	assert.Equal(t, "A", rowA["full_name"])
	rowB, ok := h.remote.row(domain.ResourceCustomers, 43)
	require.True(t, ok)
	assert.Equal(t, "B2", rowB["full_name"])

	bServer, ok, err := h.ids.Resolve(ctx, domain.ResourceCustomers, bLocal)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(43), bServer)
}

func TestSyncAll_RemapsLocalIDsForFollowUps(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)

	created, err := h.api.Create(ctx, domain.ResourcePhones, domain.Fields{"model": "A"})
	require.NoError(t, err)
	localID, ok := created.ID()
	require.True(t, ok)
	require.True(t, domain.IsLocalID(localID))

	_, err = h.api.Update(ctx, domain.ResourcePhones, localID, domain.Fields{"model": "B"})
	require.NoError(t, err)

	h.conn.SetOnline(true)
	res := h.sync.SyncAll(ctx)
	assert.Equal(t, domain.SyncResult{Success: 2}, res)

	calls := h.remote.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "POST", calls[0].Method)
	assert.NotContains(t, calls[0].Data, "id")
	assert.Equal(t, "PUT", calls[1].Method)
	assert.Equal(t, int64(42), calls[1].ID)

	serverID, ok, err := h.ids.Resolve(ctx, domain.ResourcePhones, localID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), serverID)

	_, err = h.records.Get(ctx, domain.ResourcePhones, localID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	rec, err := h.records.Get(ctx, domain.ResourcePhones, 42)
	require.NoError(t, err)
	assert.True(t, rec.Synced)
	assert.False(t, rec.OfflineCreated)
	assert.Equal(t, "B", rec.Fields["model"])
}

func TestSyncAll_UnresolvedLocalIDTakesRetryPath(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourceSwaps, RecordID: -7})

	res := h.sync.SyncAll(ctx)

	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, h.remote.recorded())
	pending, err := h.sync.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].LastError, domain.ErrUnresolvedLocalID.Error())
}

func TestSyncAll_PushesOfflineCreatedRecordsWithoutQueuedCreate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)

	orphan, err := h.records.Save(ctx, domain.ResourceCustomers, domain.Tracked{Fields: domain.Fields{"full_name": "Kofi"}})
	require.NoError(t, err)

	res := h.sync.SyncAll(ctx)

	assert.Equal(t, domain.SyncResult{Success: 1}, res)
	unsynced, err := h.records.GetUnsynced(ctx, domain.ResourceCustomers)
	require.NoError(t, err)
	assert.Empty(t, unsynced)

	serverID, ok, err := h.ids.Resolve(ctx, domain.ResourceCustomers, orphan)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), serverID)
}

func TestSyncAll_DoesNotDoublePostQueuedCreate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)

	_, err := h.api.Create(ctx, domain.ResourceSales, domain.Fields{"total": 100})
	require.NoError(t, err)

	h.conn.SetOnline(true)
	h.remote.failMethod("POST", errNetwork)
	res := h.sync.SyncAll(ctx)

	assert.Equal(t, domain.SyncResult{Failed: 1}, res)
	assert.Len(t, h.remote.recorded(), 1)
}

func TestSyncAll_PositiveOfflineCreatedIDIsConfirmed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	_, err := h.records.Save(ctx, domain.ResourcePhones, domain.Tracked{ID: 500, Fields: domain.Fields{"model": "Z"}})
	require.NoError(t, err)

	res := h.sync.SyncAll(ctx)

	assert.Equal(t, 1, res.Success)
	rec, err := h.records.Get(ctx, domain.ResourcePhones, 42)
	require.NoError(t, err)
	assert.True(t, rec.Synced)
	_, err = h.records.Get(ctx, domain.ResourcePhones, 500)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	again := h.sync.SyncAll(ctx)
	assert.Equal(t, domain.SyncResult{}, again)
}

func TestSyncManager_RequeueAndDiscard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	id := enqueue(t, h, domain.PendingOperation{Type: domain.OperationDelete, Resource: domain.ResourcePhones, RecordID: 8})

	assert.ErrorIs(t, h.sync.Requeue(ctx, id), domain.ErrNotAbandoned)
	assert.ErrorIs(t, h.sync.Discard(ctx, id), domain.ErrNotAbandoned)
	assert.ErrorIs(t, h.sync.Requeue(ctx, 12345), domain.ErrNotFound)

	op, err := h.queue.Get(ctx, id)
	require.NoError(t, err)
	op.Status = domain.OperationAbandoned
	op.Retries = 6
	require.NoError(t, h.queue.Update(ctx, *op))

	abandoned, err := h.sync.AbandonedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, abandoned)

	require.NoError(t, h.sync.Requeue(ctx, id))
	op, err = h.queue.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OperationPending, op.Status)
	assert.Equal(t, 0, op.Retries)
	assert.Empty(t, op.LastError)

	op.Status = domain.OperationAbandoned
	require.NoError(t, h.queue.Update(ctx, *op))
	require.NoError(t, h.sync.Discard(ctx, id))
	_, err = h.queue.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncManager_AutoSync(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourcePhones})

	h.sync.StartAutoSync(ctx, 10*time.Millisecond)
	h.sync.StartAutoSync(ctx, 10*time.Millisecond)
	defer h.sync.StopAutoSync()

	require.Eventually(t, func() bool {
		n, err := h.sync.PendingCount(ctx)
		return err == nil && n == 0
	}, time.Second, 5*time.Millisecond)

	h.sync.StopAutoSync()
	h.sync.StopAutoSync()

	enqueue(t, h, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourcePhones})
	time.Sleep(40 * time.Millisecond)
	n, err := h.sync.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSyncManager_AutoSyncSkipsWhileOffline(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	enqueue(t, h, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourcePhones})

	h.sync.StartAutoSync(ctx, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	h.sync.StopAutoSync()

	assert.Empty(t, h.remote.recorded())
}

func TestNewSyncManager_DefaultCeiling(t *testing.T) {
	m := NewSyncManager(SyncDeps{})
	assert.Equal(t, domain.DefaultRetryCeiling, m.retryCeiling)
}
