// Package services holds the sync core: the offline-aware record facade,
// the sync manager that replays the pending queue, and the connectivity
// watcher that feeds the status UI.
//
// Services depend only on domain and the port interfaces; adapters are
// injected by the composition root.
package services
