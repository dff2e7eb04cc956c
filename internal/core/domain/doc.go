// Package domain defines the core business entities for SwapSync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Resource: A synchronised server collection (customers, phones, ...)
//   - Tracked: A locally cached record with its sync flags
//   - PendingOperation: A queued mutation intent awaiting the server
//   - SyncResult: The outcome of one reconciliation pass
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
