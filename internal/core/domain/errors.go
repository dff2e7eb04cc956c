package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownResource indicates a resource name outside the synchronised set.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrOffline indicates the server cannot be reached.
	ErrOffline = errors.New("offline")

	// ErrNothingToSync indicates a manual sync was requested with an empty queue.
	ErrNothingToSync = errors.New("nothing to sync")

	// Queue Errors.

	// ErrUnresolvedLocalID indicates an operation references a locally minted id
	// whose CREATE has not been confirmed by the server yet.
	ErrUnresolvedLocalID = errors.New("local id not yet assigned by server")

	// ErrNotAbandoned indicates a requeue/discard targeted an operation that is still pending.
	ErrNotAbandoned = errors.New("operation is not abandoned")

	// Remote Errors.

	// ErrRemote indicates the server rejected a request.
	ErrRemote = errors.New("remote request failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the bearer token was rejected.
	ErrAuthInvalid = errors.New("authentication invalid")
)
