package memory

import (
	"context"
	"sync"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// Ensure IDMapStore implements the interface.
var _ driven.IDMapStore = (*IDMapStore)(nil)

type idKey struct {
	resource domain.Resource
	localID  int64
}

// IDMapStore is an in-memory implementation of driven.IDMapStore.
type IDMapStore struct {
	mu       sync.RWMutex
	mappings map[idKey]int64
}

// NewIDMapStore creates a new in-memory id map.
func NewIDMapStore() *IDMapStore {
	return &IDMapStore{
		mappings: make(map[idKey]int64),
	}
}

// SaveMapping records local -> server for a resource.
func (s *IDMapStore) SaveMapping(_ context.Context, mapping domain.IDMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[idKey{mapping.Resource, mapping.LocalID}] = mapping.ServerID
	return nil
}

// Resolve returns the server id for a local id.
func (s *IDMapStore) Resolve(_ context.Context, resource domain.Resource, localID int64) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	serverID, ok := s.mappings[idKey{resource, localID}]
	return serverID, ok, nil
}
