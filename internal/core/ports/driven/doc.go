// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RecordStore: Resource-partitioned local mirror of server collections
//   - OperationQueue: Ordered log of pending mutation intents
//   - SettingsStore: Flat key-value local state (last sync time, ...)
//   - IDMapStore: Local id to server id reconciliation table
//   - RemoteAPI: The REST backend's collection endpoints
//   - Connectivity: Online/offline signal
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
