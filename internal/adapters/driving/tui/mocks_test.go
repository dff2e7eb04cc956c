package tui

import (
	"context"
	"sync"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// MockStatusService implements driving.StatusService for testing.
type MockStatusService struct {
	mu        sync.Mutex
	snapshot  domain.SyncSnapshot
	result    domain.SyncResult
	err       error
	refreshed int
	synced    int
}

func (m *MockStatusService) Start(_ context.Context) error { return nil }

func (m *MockStatusService) Stop() {}

func (m *MockStatusService) Refresh(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed++
}

func (m *MockStatusService) Snapshot() domain.SyncSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

func (m *MockStatusService) SyncNow(_ context.Context) (domain.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced++
	return m.result, m.err
}

// MockQueueService implements driving.QueueService for testing.
type MockQueueService struct {
	pending   []domain.PendingOperation
	abandoned []domain.PendingOperation
	err       error
	requeued  []int64
	discarded []int64
}

func (m *MockQueueService) ListPending(_ context.Context) ([]domain.PendingOperation, error) {
	return m.pending, m.err
}

func (m *MockQueueService) ListAbandoned(_ context.Context) ([]domain.PendingOperation, error) {
	return m.abandoned, m.err
}

func (m *MockQueueService) Requeue(_ context.Context, id int64) error {
	m.requeued = append(m.requeued, id)
	return m.err
}

func (m *MockQueueService) Discard(_ context.Context, id int64) error {
	m.discarded = append(m.discarded, id)
	return m.err
}
