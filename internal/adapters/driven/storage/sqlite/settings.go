package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// settingsStore implements driven.SettingsStore.
type settingsStore struct {
	store *Store
}

var _ driven.SettingsStore = (*settingsStore)(nil)

// SetSetting stores a JSON-encoded value under key.
func (s *settingsStore) SetSetting(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling setting %s: %w", key, err)
	}

	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, string(data))
		if err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
		return nil
	})
}

// GetSetting decodes the value under key into dest.
func (s *settingsStore) GetSetting(ctx context.Context, key string, dest any) (bool, error) {
	var data string
	row := s.store.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("reading setting %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("unmarshalling setting %s: %w", key, err)
	}
	return true, nil
}
