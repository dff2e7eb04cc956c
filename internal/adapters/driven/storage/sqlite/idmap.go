package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// idMapStore implements driven.IDMapStore.
type idMapStore struct {
	store *Store
}

var _ driven.IDMapStore = (*idMapStore)(nil)

// SaveMapping records local -> server for a resource.
func (s *idMapStore) SaveMapping(ctx context.Context, mapping domain.IDMapping) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO id_mappings (resource, local_id, server_id, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(resource, local_id) DO UPDATE SET server_id = excluded.server_id
		`, mapping.Resource, mapping.LocalID, mapping.ServerID, formatTime(mapping.CreatedAt))
		if err != nil {
			return fmt.Errorf("saving id mapping: %w", err)
		}
		return nil
	})
}

// Resolve returns the server id for a local id.
func (s *idMapStore) Resolve(ctx context.Context, resource domain.Resource, localID int64) (int64, bool, error) {
	var serverID int64
	row := s.store.db.QueryRowContext(ctx,
		"SELECT server_id FROM id_mappings WHERE resource = ? AND local_id = ?", resource, localID)
	if err := row.Scan(&serverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolving id mapping: %w", err)
	}
	return serverID, true, nil
}
