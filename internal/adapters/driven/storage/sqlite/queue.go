package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// operationQueue implements driven.OperationQueue on the pending_operations table.
type operationQueue struct {
	store *Store
}

var _ driven.OperationQueue = (*operationQueue)(nil)

const operationColumns = "id, type, resource, record_id, data, idempotency_key, timestamp, retries, status, last_error"

// Add appends an operation and returns its id.
func (q *operationQueue) Add(ctx context.Context, op domain.PendingOperation) (int64, error) {
	if err := op.Validate(); err != nil {
		return 0, err
	}

	data, err := json.Marshal(op.Data)
	if err != nil {
		return 0, fmt.Errorf("marshalling operation data: %w", err)
	}

	key := op.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}

	var id int64
	err = q.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO pending_operations (type, resource, record_id, data, idempotency_key, timestamp, retries, status)
			VALUES (?, ?, ?, ?, ?, ?, 0, ?)
		`, op.Type, op.Resource, op.RecordID, string(data), key,
			formatTime(time.Now()), domain.OperationPending)
		if err != nil {
			return fmt.Errorf("adding pending operation: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading operation id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get retrieves an operation by id.
func (q *operationQueue) Get(ctx context.Context, id int64) (*domain.PendingOperation, error) {
	row := q.store.db.QueryRowContext(ctx,
		"SELECT "+operationColumns+" FROM pending_operations WHERE id = ?", id)

	op, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// List returns pending operations in insertion order.
func (q *operationQueue) List(ctx context.Context) ([]domain.PendingOperation, error) {
	return q.listByStatus(ctx, domain.OperationPending)
}

// ListAbandoned returns abandoned operations in insertion order.
func (q *operationQueue) ListAbandoned(ctx context.Context) ([]domain.PendingOperation, error) {
	return q.listByStatus(ctx, domain.OperationAbandoned)
}

func (q *operationQueue) listByStatus(ctx context.Context, status domain.OperationStatus) ([]domain.PendingOperation, error) {
	rows, err := q.store.db.QueryContext(ctx,
		"SELECT "+operationColumns+" FROM pending_operations WHERE status = ? ORDER BY id", status)
	if err != nil {
		return nil, fmt.Errorf("querying pending operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.PendingOperation //nolint:prealloc // size unknown from query
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, *op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending operations: %w", err)
	}
	return ops, nil
}

// Update persists retry bookkeeping, status and payload.
func (q *operationQueue) Update(ctx context.Context, op domain.PendingOperation) error {
	data, err := json.Marshal(op.Data)
	if err != nil {
		return fmt.Errorf("marshalling operation data: %w", err)
	}

	return q.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE pending_operations
			SET record_id = ?, data = ?, retries = ?, status = ?, last_error = ?
			WHERE id = ?
		`, op.RecordID, string(data), op.Retries, op.Status, nullString(op.LastError), op.ID)
		if err != nil {
			return fmt.Errorf("updating pending operation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Delete removes an operation.
func (q *operationQueue) Delete(ctx context.Context, id int64) error {
	return q.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM pending_operations WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting pending operation: %w", err)
		}
		return nil
	})
}

// Count returns the number of pending operations.
func (q *operationQueue) Count(ctx context.Context) (int, error) {
	var count int
	row := q.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pending_operations WHERE status = ?", domain.OperationPending)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pending operations: %w", err)
	}
	return count, nil
}

func scanOperation(row rowScanner) (*domain.PendingOperation, error) {
	var op domain.PendingOperation
	var opType, resource, data, timestamp, status string
	var lastError sql.NullString

	if err := row.Scan(&op.ID, &opType, &resource, &op.RecordID, &data,
		&op.IdempotencyKey, &timestamp, &op.Retries, &status, &lastError); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning pending operation: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &op.Data); err != nil {
		return nil, fmt.Errorf("unmarshalling operation data: %w", err)
	}

	op.Type = domain.OperationType(opType)
	op.Resource = domain.Resource(resource)
	op.Status = domain.OperationStatus(status)
	op.Timestamp = parseTime(timestamp)
	op.LastError = lastError.String
	return &op, nil
}
