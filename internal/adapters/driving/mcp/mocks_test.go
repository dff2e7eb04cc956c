package mcp

import (
	"context"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	snapshot  domain.SyncSnapshot
	result    domain.SyncResult
	err       error
	refreshed int
	synced    int
}

func (m *mockStatusService) Start(_ context.Context) error { return nil }

func (m *mockStatusService) Stop() {}

func (m *mockStatusService) Refresh(_ context.Context) { m.refreshed++ }

func (m *mockStatusService) Snapshot() domain.SyncSnapshot { return m.snapshot }

func (m *mockStatusService) SyncNow(_ context.Context) (domain.SyncResult, error) {
	m.synced++
	return m.result, m.err
}

// mockQueueService is a mock implementation of driving.QueueService.
type mockQueueService struct {
	pending   []domain.PendingOperation
	abandoned []domain.PendingOperation
	err       error
}

func (m *mockQueueService) ListPending(_ context.Context) ([]domain.PendingOperation, error) {
	return m.pending, m.err
}

func (m *mockQueueService) ListAbandoned(_ context.Context) ([]domain.PendingOperation, error) {
	return m.abandoned, m.err
}

func (m *mockQueueService) Requeue(_ context.Context, _ int64) error { return m.err }

func (m *mockQueueService) Discard(_ context.Context, _ int64) error { return m.err }

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	records []domain.Fields
	err     error
	asked   domain.Resource
}

func (m *mockRecordService) Create(_ context.Context, _ domain.Resource, data domain.Fields) (domain.Fields, error) {
	return data, m.err
}

func (m *mockRecordService) Update(
	_ context.Context,
	_ domain.Resource,
	_ int64,
	data domain.Fields,
) (domain.Fields, error) {
	return data, m.err
}

func (m *mockRecordService) Delete(_ context.Context, _ domain.Resource, id int64) (domain.Fields, error) {
	return domain.Fields{"id": id}, m.err
}

func (m *mockRecordService) GetAll(_ context.Context, resource domain.Resource) ([]domain.Fields, error) {
	m.asked = resource
	return m.records, m.err
}
