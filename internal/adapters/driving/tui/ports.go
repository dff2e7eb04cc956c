// Package tui provides an interactive terminal dashboard for swapsync.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/swapsync/swapsync-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Status reports connectivity and runs manual syncs.
	Status driving.StatusService

	// Queue lists, requeues and discards operations.
	Queue driving.QueueService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(status driving.StatusService, queue driving.QueueService) *Ports {
	return &Ports{
		Status: status,
		Queue:  queue,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Status == nil {
		return ErrMissingStatusService
	}
	if p.Queue == nil {
		return ErrMissingQueueService
	}
	return nil
}
