package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

func TestOperationQueue_AddStampsDefaults(t *testing.T) {
	ctx := context.Background()
	q := NewOperationQueue()

	id, err := q.Add(ctx, domain.PendingOperation{
		Type:     domain.OperationCreate,
		Resource: domain.ResourcePhones,
		Data:     domain.Fields{"model": "A"},
		Retries:  3,
		Status:   domain.OperationAbandoned,
	})
	require.NoError(t, err)

	op, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, op.Retries)
	assert.Equal(t, domain.OperationPending, op.Status)
	assert.NotEmpty(t, op.IdempotencyKey)
	assert.False(t, op.Timestamp.IsZero())
}

func TestOperationQueue_KeepsCallerKey(t *testing.T) {
	ctx := context.Background()
	q := NewOperationQueue()

	id, err := q.Add(ctx, domain.PendingOperation{
		Type: domain.OperationDelete, Resource: domain.ResourceSales, RecordID: 4,
		IdempotencyKey: "fixed",
	})
	require.NoError(t, err)

	op, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "fixed", op.IdempotencyKey)
}

func TestOperationQueue_RejectsInvalid(t *testing.T) {
	q := NewOperationQueue()
	_, err := q.Add(context.Background(), domain.PendingOperation{Type: domain.OperationUpdate, Resource: domain.ResourcePhones})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOperationQueue_ListOrderAndStatus(t *testing.T) {
	ctx := context.Background()
	q := NewOperationQueue()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := q.Add(ctx, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourceSwaps})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	op, err := q.Get(ctx, ids[1])
	require.NoError(t, err)
	op.Status = domain.OperationAbandoned
	op.Retries = 6
	op.LastError = "server said no"
	require.NoError(t, q.Update(ctx, *op))

	pending, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[2], pending[1].ID)

	abandoned, err := q.ListAbandoned(ctx)
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, 6, abandoned[0].Retries)
	assert.Equal(t, "server said no", abandoned[0].LastError)

	count, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOperationQueue_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	q := NewOperationQueue()

	assert.ErrorIs(t, q.Update(ctx, domain.PendingOperation{ID: 42}), domain.ErrNotFound)

	id, err := q.Add(ctx, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourceRepairs})
	require.NoError(t, err)
	require.NoError(t, q.Delete(ctx, id))
	require.NoError(t, q.Delete(ctx, id))

	_, err = q.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOperationQueue_FailDeleteWith(t *testing.T) {
	ctx := context.Background()
	q := NewOperationQueue()
	first, err := q.Add(ctx, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourcePhones})
	require.NoError(t, err)
	second, err := q.Add(ctx, domain.PendingOperation{Type: domain.OperationCreate, Resource: domain.ResourcePhones})
	require.NoError(t, err)

	boom := errors.New("disk I/O error")
	q.FailDeleteWith(second, boom)

	require.NoError(t, q.Delete(ctx, first))
	assert.ErrorIs(t, q.Delete(ctx, second), boom)
	_, err = q.Get(ctx, second)
	require.NoError(t, err)

	q.FailDeleteWith(second, nil)
	require.NoError(t, q.Delete(ctx, second))
	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
