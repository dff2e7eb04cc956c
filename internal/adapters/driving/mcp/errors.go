// Package mcp provides an MCP (Model Context Protocol) server adapter for SwapSync.
// It lets AI assistants inspect the sync queue and trigger a sync pass.
package mcp

import "errors"

// ErrMissingStatusService is returned when the status service is not provided.
var ErrMissingStatusService = errors.New("mcp: status service is required")
