package driven

import (
	"context"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// OperationQueue persists pending mutation intents in insertion order.
type OperationQueue interface {
	// Add stamps timestamp=now, retries=0, status=pending and an idempotency
	// key (if missing), appends the operation and returns its id.
	Add(ctx context.Context, op domain.PendingOperation) (int64, error)

	// Get retrieves an operation by id, or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.PendingOperation, error)

	// List returns pending operations oldest first.
	List(ctx context.Context) ([]domain.PendingOperation, error)

	// ListAbandoned returns operations past the retry ceiling, oldest first.
	ListAbandoned(ctx context.Context) ([]domain.PendingOperation, error)

	// Update persists retry bookkeeping, status and payload of an operation.
	Update(ctx context.Context, op domain.PendingOperation) error

	// Delete removes an operation.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of pending operations.
	Count(ctx context.Context) (int, error)
}
