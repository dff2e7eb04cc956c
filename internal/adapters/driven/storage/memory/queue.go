package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// Ensure OperationQueue implements the interface.
var _ driven.OperationQueue = (*OperationQueue)(nil)

// OperationQueue is an in-memory implementation of driven.OperationQueue.
type OperationQueue struct {
	mu     sync.RWMutex
	ops    map[int64]domain.PendingOperation
	nextID int64

	// listErr, when set, is returned by List.
	listErr error
	// deleteErr, when set, is returned by Delete for the keyed operations.
	deleteErr map[int64]error
}

// NewOperationQueue creates a new in-memory operation queue.
func NewOperationQueue() *OperationQueue {
	return &OperationQueue{
		ops:       make(map[int64]domain.PendingOperation),
		deleteErr: make(map[int64]error),
	}
}

// FailListWith makes List return err. Pass nil to recover.
func (q *OperationQueue) FailListWith(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listErr = err
}

// FailDeleteWith makes Delete of operation id return err. Pass nil to recover.
func (q *OperationQueue) FailDeleteWith(id int64, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err == nil {
		delete(q.deleteErr, id)
		return
	}
	q.deleteErr[id] = err
}

// Add appends an operation and returns its id.
func (q *OperationQueue) Add(_ context.Context, op domain.PendingOperation) (int64, error) {
	if err := op.Validate(); err != nil {
		return 0, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	op.ID = q.nextID
	op.Timestamp = time.Now()
	op.Retries = 0
	op.Status = domain.OperationPending
	op.Data = op.Data.Clone()
	if op.IdempotencyKey == "" {
		op.IdempotencyKey = uuid.New().String()
	}
	q.ops[op.ID] = op
	return op.ID, nil
}

// Get retrieves an operation by id.
func (q *OperationQueue) Get(_ context.Context, id int64) (*domain.PendingOperation, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	op, ok := q.ops[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	op.Data = op.Data.Clone()
	return &op, nil
}

// List returns pending operations oldest first.
func (q *OperationQueue) List(_ context.Context) ([]domain.PendingOperation, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.listErr != nil {
		return nil, q.listErr
	}
	return q.byStatus(domain.OperationPending), nil
}

// ListAbandoned returns abandoned operations oldest first.
func (q *OperationQueue) ListAbandoned(_ context.Context) ([]domain.PendingOperation, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.byStatus(domain.OperationAbandoned), nil
}

// Update persists retry bookkeeping, status and payload.
func (q *OperationQueue) Update(_ context.Context, op domain.PendingOperation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	existing, ok := q.ops[op.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.RecordID = op.RecordID
	existing.Data = op.Data.Clone()
	existing.Retries = op.Retries
	existing.Status = op.Status
	existing.LastError = op.LastError
	q.ops[op.ID] = existing
	return nil
}

// Delete removes an operation.
func (q *OperationQueue) Delete(_ context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.deleteErr[id]; err != nil {
		return err
	}
	delete(q.ops, id)
	return nil
}

// Count returns the number of pending operations.
func (q *OperationQueue) Count(_ context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.byStatus(domain.OperationPending)), nil
}

// byStatus returns matching operations sorted by id (caller must hold lock).
func (q *OperationQueue) byStatus(status domain.OperationStatus) []domain.PendingOperation {
	var out []domain.PendingOperation
	for _, op := range q.ops {
		if op.Status == status {
			op.Data = op.Data.Clone()
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
