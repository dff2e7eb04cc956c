package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu         sync.RWMutex
	partitions map[domain.Resource]map[int64]domain.Tracked

	// lowest is the last local id minted per resource. It only moves down,
	// so an id is never handed out twice even after re-keying or Clear.
	lowest map[domain.Resource]int64

	// failWith, when set, is returned by every call.
	failWith error
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		partitions: make(map[domain.Resource]map[int64]domain.Tracked),
		lowest:     make(map[domain.Resource]int64),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *RecordStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *RecordStore) partition(resource domain.Resource) map[int64]domain.Tracked {
	p, ok := s.partitions[resource]
	if !ok {
		p = make(map[int64]domain.Tracked)
		s.partitions[resource] = p
	}
	return p
}

// Save inserts a record stamped as unsynced and offline-created.
func (s *RecordStore) Save(_ context.Context, resource domain.Resource, rec domain.Tracked) (int64, error) {
	if !resource.IsValid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}

	p := s.partition(resource)
	if rec.ID == 0 {
		minID := s.lowest[resource]
		for id := range p {
			minID = min(minID, id)
		}
		rec.ID = minID - 1
	}
	if _, exists := p[rec.ID]; exists {
		return 0, fmt.Errorf("record %d already exists in %s", rec.ID, resource)
	}
	if rec.ID < s.lowest[resource] {
		s.lowest[resource] = rec.ID
	}

	rec.Resource = resource
	rec.Fields = stripID(rec.Fields)
	rec.Synced = false
	rec.OfflineCreated = true
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	p[rec.ID] = rec
	return rec.ID, nil
}

// GetAll returns every record in the partition ordered by id.
func (s *RecordStore) GetAll(_ context.Context, resource domain.Resource) ([]domain.Tracked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.collect(resource, func(domain.Tracked) bool { return true }), nil
}

// Get returns a record by id.
func (s *RecordStore) Get(_ context.Context, resource domain.Resource, id int64) (*domain.Tracked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	rec, ok := s.partitions[resource][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.Fields = rec.Fields.Clone()
	return &rec, nil
}

// Update fully replaces (or inserts) the record keyed by rec.ID.
func (s *RecordStore) Update(_ context.Context, resource domain.Resource, rec domain.Tracked) error {
	if !resource.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}
	if rec.ID == 0 {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	rec.Resource = resource
	rec.Fields = stripID(rec.Fields)
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	s.partition(resource)[rec.ID] = rec
	return nil
}

// Delete removes one record.
func (s *RecordStore) Delete(_ context.Context, resource domain.Resource, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	delete(s.partitions[resource], id)
	return nil
}

// Clear removes every record in the partition.
func (s *RecordStore) Clear(_ context.Context, resource domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	delete(s.partitions, resource)
	return nil
}

// Replace swaps the partition contents.
func (s *RecordStore) Replace(_ context.Context, resource domain.Resource, recs []domain.Tracked) error {
	if !resource.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	p := make(map[int64]domain.Tracked, len(recs))
	for _, rec := range recs {
		rec.Resource = resource
		rec.Fields = stripID(rec.Fields)
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = time.Now()
		}
		p[rec.ID] = rec
	}
	s.partitions[resource] = p
	return nil
}

// GetUnsynced returns records where synced=false.
func (s *RecordStore) GetUnsynced(_ context.Context, resource domain.Resource) ([]domain.Tracked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.collect(resource, func(rec domain.Tracked) bool { return !rec.Synced }), nil
}

// MarkAsSynced sets synced=true on a record.
func (s *RecordStore) MarkAsSynced(_ context.Context, resource domain.Resource, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	p := s.partitions[resource]
	rec, ok := p[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Synced = true
	rec.UpdatedAt = time.Now()
	p[id] = rec
	return nil
}

// collect returns matching records sorted by id (caller must hold lock).
func (s *RecordStore) collect(resource domain.Resource, keep func(domain.Tracked) bool) []domain.Tracked {
	var out []domain.Tracked
	for _, rec := range s.partitions[resource] {
		if keep(rec) {
			rec.Fields = rec.Fields.Clone()
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func stripID(fields domain.Fields) domain.Fields {
	out := fields.Clone()
	delete(out, "id")
	return out
}
