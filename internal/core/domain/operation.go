package domain

import (
	"fmt"
	"time"
)

// DefaultRetryCeiling is the number of failed attempts after which a queued
// operation is abandoned.
const DefaultRetryCeiling = 5

// OperationType is the kind of mutation a pending operation replays.
type OperationType string

// Operation types.
const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

// IsValid returns true if the operation type is recognised.
func (t OperationType) IsValid() bool {
	switch t {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// OperationStatus tracks where a queued operation is in its lifecycle.
type OperationStatus string

const (
	// OperationPending operations are drained by the sync manager.
	OperationPending OperationStatus = "pending"

	// OperationAbandoned operations exceeded the retry ceiling. They are kept
	// for inspection but never replayed unless requeued.
	OperationAbandoned OperationStatus = "abandoned"
)

// PendingOperation is a mutation intent that could not be applied to the server.
type PendingOperation struct {
	// ID is the local auto-increment key; it defines drain order.
	ID int64

	// Type is CREATE, UPDATE or DELETE.
	Type OperationType

	// Resource is the target collection.
	Resource Resource

	// RecordID is the id the operation targets. For CREATE it is the local
	// id minted for the optimistic record (zero when none was minted).
	RecordID int64

	// Data is the request payload; {id} for DELETE.
	Data Fields

	// IdempotencyKey is sent with every replay so the server can drop duplicates.
	IdempotencyKey string

	// Timestamp is when the operation was queued.
	Timestamp time.Time

	// Retries counts failed replay attempts.
	Retries int

	// Status is pending or abandoned.
	Status OperationStatus

	// LastError holds the most recent replay failure.
	LastError string
}

// Validate checks the operation before it is queued.
func (op *PendingOperation) Validate() error {
	if !op.Type.IsValid() {
		return fmt.Errorf("%w: operation type %q", ErrInvalidInput, op.Type)
	}
	if !op.Resource.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownResource, op.Resource)
	}
	if op.Type != OperationCreate && op.RecordID == 0 {
		return fmt.Errorf("%w: %s requires a record id", ErrInvalidInput, op.Type)
	}
	return nil
}

// ExceedsCeiling reports whether the retry count is beyond ceiling.
func (op *PendingOperation) ExceedsCeiling(ceiling int) bool {
	return op.Retries > ceiling
}

// IDMapping links a locally minted id to the id the server assigned on CREATE.
type IDMapping struct {
	Resource  Resource
	LocalID   int64
	ServerID  int64
	CreatedAt time.Time
}
