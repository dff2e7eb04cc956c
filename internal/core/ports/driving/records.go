package driving

import (
	"context"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// RecordService is the offline-aware entry point application code uses for
// reads and writes. It never surfaces network failures: callers receive the
// server result or an optimistic local result flagged with "offline": true.
type RecordService interface {
	// Create adds a record to a resource.
	Create(ctx context.Context, resource domain.Resource, data domain.Fields) (domain.Fields, error)

	// Update replaces a record.
	Update(ctx context.Context, resource domain.Resource, id int64, data domain.Fields) (domain.Fields, error)

	// Delete removes a record. The returned fields report whether the
	// delete was applied offline.
	Delete(ctx context.Context, resource domain.Resource, id int64) (domain.Fields, error)

	// GetAll lists a resource, refreshing the local mirror when online.
	GetAll(ctx context.Context, resource domain.Resource) ([]domain.Fields, error)
}
