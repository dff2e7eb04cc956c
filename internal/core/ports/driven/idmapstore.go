package driven

import (
	"context"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// IDMapStore remembers which server id replaced a locally minted id.
type IDMapStore interface {
	// SaveMapping records local -> server for a resource.
	SaveMapping(ctx context.Context, mapping domain.IDMapping) error

	// Resolve returns the server id for a local id.
	// Returns false and no error when no mapping exists.
	Resolve(ctx context.Context, resource domain.Resource, localID int64) (int64, bool, error)
}
