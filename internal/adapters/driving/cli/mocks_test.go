package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// mockRecordService implements driving.RecordService for testing.
type mockRecordService struct {
	created  domain.Fields
	updated  domain.Fields
	deleted  int64
	resource domain.Resource
	rows     []domain.Fields
	offline  bool
	err      error
}

func (m *mockRecordService) Create(_ context.Context, resource domain.Resource, data domain.Fields) (domain.Fields, error) {
	m.resource, m.created = resource, data
	if m.err != nil {
		return nil, m.err
	}
	out := data.Clone()
	out["id"] = int64(42)
	if m.offline {
		out["id"] = int64(-1)
		out["offline"] = true
	}
	return out, nil
}

func (m *mockRecordService) Update(
	_ context.Context,
	resource domain.Resource,
	id int64,
	data domain.Fields,
) (domain.Fields, error) {
	m.resource, m.updated = resource, data
	if m.err != nil {
		return nil, m.err
	}
	out := data.Clone()
	out["id"] = id
	if m.offline {
		out["offline"] = true
	}
	return out, nil
}

func (m *mockRecordService) Delete(_ context.Context, resource domain.Resource, id int64) (domain.Fields, error) {
	m.resource, m.deleted = resource, id
	if m.err != nil {
		return nil, m.err
	}
	out := domain.Fields{"id": id}
	if m.offline {
		out["offline"] = true
	}
	return out, nil
}

func (m *mockRecordService) GetAll(_ context.Context, resource domain.Resource) ([]domain.Fields, error) {
	m.resource = resource
	return m.rows, m.err
}

// mockSyncManager implements driving.SyncManager for testing.
type mockSyncManager struct {
	autoStarted  time.Duration
	autoStopped  bool
	pendingCount int
}

func (m *mockSyncManager) SyncAll(_ context.Context) domain.SyncResult { return domain.SyncResult{} }

func (m *mockSyncManager) StartAutoSync(_ context.Context, interval time.Duration) {
	m.autoStarted = interval
}

func (m *mockSyncManager) StopAutoSync() { m.autoStopped = true }

func (m *mockSyncManager) PendingCount(_ context.Context) (int, error) { return m.pendingCount, nil }

func (m *mockSyncManager) Syncing() bool { return false }

// mockQueueService implements driving.QueueService for testing.
type mockQueueService struct {
	pending   []domain.PendingOperation
	abandoned []domain.PendingOperation
	requeued  []int64
	discarded []int64
	err       error
}

func (m *mockQueueService) ListPending(_ context.Context) ([]domain.PendingOperation, error) {
	return m.pending, m.err
}

func (m *mockQueueService) ListAbandoned(_ context.Context) ([]domain.PendingOperation, error) {
	return m.abandoned, m.err
}

func (m *mockQueueService) Requeue(_ context.Context, id int64) error {
	m.requeued = append(m.requeued, id)
	return m.err
}

func (m *mockQueueService) Discard(_ context.Context, id int64) error {
	m.discarded = append(m.discarded, id)
	return m.err
}

// mockStatusService implements driving.StatusService for testing.
type mockStatusService struct {
	snapshot  domain.SyncSnapshot
	result    domain.SyncResult
	syncErr   error
	refreshed int
	started   bool
	stopped   bool
}

func (m *mockStatusService) Start(ctx context.Context) error {
	m.started = true
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockStatusService) Stop() { m.stopped = true }

func (m *mockStatusService) Refresh(_ context.Context) { m.refreshed++ }

func (m *mockStatusService) Snapshot() domain.SyncSnapshot { return m.snapshot }

func (m *mockStatusService) SyncNow(_ context.Context) (domain.SyncResult, error) {
	return m.result, m.syncErr
}

// testRuntime bundles the mocks behind a Runtime.
type testRuntime struct {
	*Runtime
	records *mockRecordService
	sync    *mockSyncManager
	queue   *mockQueueService
	status  *mockStatusService
}

// setupTestRuntime installs a mock runtime and restores the previous one on cleanup.
func setupTestRuntime(t *testing.T) *testRuntime {
	t.Helper()
	tr := &testRuntime{
		records: &mockRecordService{},
		sync:    &mockSyncManager{},
		queue:   &mockQueueService{},
		status:  &mockStatusService{},
	}
	tr.Runtime = &Runtime{
		Records:      tr.records,
		Sync:         tr.sync,
		Queue:        tr.queue,
		Status:       tr.status,
		SyncInterval: 30 * time.Second,
	}

	old := rt
	rt = tr.Runtime
	t.Cleanup(func() { rt = old })
	return tr
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// resetFlags restores every flag in the tree to its default, since cobra
// keeps parsed values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
