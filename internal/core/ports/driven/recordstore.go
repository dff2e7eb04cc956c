package driven

import (
	"context"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// RecordStore is the durable local mirror of the server collections.
// Every write is atomic per call; failures never leave partial writes.
type RecordStore interface {
	// Save inserts a record stamped synced=false, offline_created=true.
	// A non-zero rec.ID is honoured, otherwise a local (negative) id is minted.
	// Returns the assigned id.
	Save(ctx context.Context, resource domain.Resource, rec domain.Tracked) (int64, error)

	// GetAll returns every record in the partition ordered by id.
	GetAll(ctx context.Context, resource domain.Resource) ([]domain.Tracked, error)

	// Get returns a record by id, or domain.ErrNotFound.
	Get(ctx context.Context, resource domain.Resource, id int64) (*domain.Tracked, error)

	// Update fully replaces the record keyed by rec.ID, flags included.
	// A missing record is inserted.
	Update(ctx context.Context, resource domain.Resource, rec domain.Tracked) error

	// Delete removes one record. Deleting a missing record is not an error.
	Delete(ctx context.Context, resource domain.Resource, id int64) error

	// Clear removes every record in the partition.
	Clear(ctx context.Context, resource domain.Resource) error

	// Replace swaps the partition contents for recs in one transaction.
	Replace(ctx context.Context, resource domain.Resource, recs []domain.Tracked) error

	// GetUnsynced returns records where synced=false.
	GetUnsynced(ctx context.Context, resource domain.Resource) ([]domain.Tracked, error)

	// MarkAsSynced sets synced=true on a record.
	MarkAsSynced(ctx context.Context, resource domain.Resource, id int64) error
}
