package services

import (
	"context"
	"errors"
	"sync"

	"github.com/swapsync/swapsync-cli/internal/adapters/driven/connectivity"
	"github.com/swapsync/swapsync-cli/internal/adapters/driven/storage/memory"
	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

var errNetwork = errors.New("network unreachable")

// remoteCall records one request seen by mockRemote.
type remoteCall struct {
	Method         string
	Resource       domain.Resource
	ID             int64
	Data           domain.Fields
	IdempotencyKey string
}

// mockRemote is an in-memory server. Records get sequential server ids.
type mockRemote struct {
	mu       sync.Mutex
	calls    []remoteCall
	rows     map[domain.Resource]map[int64]domain.Fields
	nextID   int64
	failWith error

	// failFor fails only calls whose method is listed.
	failFor map[string]error

	// block, when set, stalls every call until closed. entered is signalled
	// once per call before blocking.
	block   chan struct{}
	entered chan struct{}
}

func newMockRemote() *mockRemote {
	return &mockRemote{
		rows:    make(map[domain.Resource]map[int64]domain.Fields),
		nextID:  41,
		failFor: make(map[string]error),
	}
}

func (m *mockRemote) seed(resource domain.Resource, id int64, fields domain.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[resource] == nil {
		m.rows[resource] = make(map[int64]domain.Fields)
	}
	row := fields.Clone()
	row["id"] = id
	m.rows[resource][id] = row
}

func (m *mockRemote) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *mockRemote) failMethod(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[method] = err
}

// row returns the server copy of a record.
func (m *mockRemote) row(resource domain.Resource, id int64) (domain.Fields, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[resource][id]
	return row.Clone(), ok
}

func (m *mockRemote) rowCount(resource domain.Resource) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[resource])
}

func (m *mockRemote) count(method string) int {
	n := 0
	for _, c := range m.recorded() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *mockRemote) recorded() []remoteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]remoteCall(nil), m.calls...)
}

func (m *mockRemote) begin(call remoteCall) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	block, entered := m.block, m.entered
	err := m.failWith
	if e, ok := m.failFor[call.Method]; ok {
		err = e
	}
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func (m *mockRemote) Create(
	_ context.Context, resource domain.Resource, data domain.Fields, opts ...driven.RequestOption,
) (domain.Fields, error) {
	o := driven.ApplyRequestOptions(opts...)
	if err := m.begin(remoteCall{"POST", resource, 0, data.Clone(), o.IdempotencyKey}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	row := data.Clone()
	row["id"] = m.nextID
	if m.rows[resource] == nil {
		m.rows[resource] = make(map[int64]domain.Fields)
	}
	m.rows[resource][m.nextID] = row
	return row.Clone(), nil
}

func (m *mockRemote) Update(
	_ context.Context, resource domain.Resource, id int64, data domain.Fields, opts ...driven.RequestOption,
) (domain.Fields, error) {
	o := driven.ApplyRequestOptions(opts...)
	if err := m.begin(remoteCall{"PUT", resource, id, data.Clone(), o.IdempotencyKey}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[resource][id]; !ok {
		return nil, domain.ErrNotFound
	}
	row := data.Clone()
	row["id"] = id
	m.rows[resource][id] = row
	return row.Clone(), nil
}

func (m *mockRemote) Delete(_ context.Context, resource domain.Resource, id int64, opts ...driven.RequestOption) error {
	o := driven.ApplyRequestOptions(opts...)
	if err := m.begin(remoteCall{"DELETE", resource, id, nil, o.IdempotencyKey}); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[resource][id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows[resource], id)
	return nil
}

func (m *mockRemote) List(_ context.Context, resource domain.Resource) ([]domain.Fields, error) {
	if err := m.begin(remoteCall{Method: "GET", Resource: resource}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Fields, 0, len(m.rows[resource]))
	for _, row := range m.rows[resource] {
		out = append(out, row.Clone())
	}
	return out, nil
}

// harness wires services to memory stores and a mock server.
type harness struct {
	records  *memory.RecordStore
	queue    *memory.OperationQueue
	settings *memory.SettingsStore
	ids      *memory.IDMapStore
	remote   *mockRemote
	conn     *connectivity.Static
	sync     *SyncManager
	api      *OfflineAPI
}

func newHarness(online bool) *harness {
	h := &harness{
		records:  memory.NewRecordStore(),
		queue:    memory.NewOperationQueue(),
		settings: memory.NewSettingsStore(),
		ids:      memory.NewIDMapStore(),
		remote:   newMockRemote(),
		conn:     connectivity.NewStatic(online),
	}
	h.sync = NewSyncManager(SyncDeps{
		Records:      h.records,
		Queue:        h.queue,
		Settings:     h.settings,
		IDs:          h.ids,
		Remote:       h.remote,
		Connectivity: h.conn,
	})
	h.api = NewOfflineAPI(h.records, h.queue, h.ids, h.remote, h.conn)
	return h
}
