package driven

import "context"

// SettingsStore persists flat key-value local state.
// Values are JSON-encoded; Get decodes into the supplied pointer.
type SettingsStore interface {
	// SetSetting stores a value under key, replacing any previous value.
	SetSetting(ctx context.Context, key string, value any) error

	// GetSetting decodes the value under key into dest.
	// Returns false and no error when the key does not exist.
	GetSetting(ctx context.Context, key string, dest any) (bool, error)
}
