package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is an in-memory implementation of driven.SettingsStore.
// Values are kept JSON-encoded so reads behave like the SQLite adapter.
type SettingsStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewSettingsStore creates a new in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{
		values: make(map[string][]byte),
	}
}

// SetSetting stores a value under key.
func (s *SettingsStore) SetSetting(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling setting %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data
	return nil
}

// GetSetting decodes the value under key into dest.
func (s *SettingsStore) GetSetting(_ context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshalling setting %s: %w", key, err)
	}
	return true, nil
}
