package mcp

import (
	"github.com/swapsync/swapsync-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Status reports connectivity and runs manual syncs.
	Status driving.StatusService

	// Queue lists pending and abandoned operations.
	Queue driving.QueueService

	// Records reads the local mirror.
	Records driving.RecordService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Status == nil {
		return ErrMissingStatusService
	}
	// Queue and Records are optional; their tools report empty results
	return nil
}
