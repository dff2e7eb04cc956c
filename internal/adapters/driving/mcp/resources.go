package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for SwapSync resources.
	uriScheme = "swapsync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queue",
		Name:        "queue",
		Description: "Pending writes waiting to be replayed",
		MIMEType:    "application/json",
	}, s.handleQueueResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{resource}",
		Name:        "records",
		Description: "Locally mirrored records of a resource",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)
}

// handleQueueResource returns the pending queue.
func (s *Server) handleQueueResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Queue == nil {
		return jsonResource(req.Params.URI, "[]"), nil
	}

	ops, err := s.ports.Queue.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing queue: %w", err)
	}

	data, err := json.MarshalIndent(toOperationsOutput(ops).Operations, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling queue: %w", err)
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

// handleRecordsResource returns the records of one resource.
func (s *Server) handleRecordsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Records == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	resource, err := domain.ParseResource(extractResource(req.Params.URI))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rows, err := s.ports.Records.GetAll(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling records: %w", err)
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

func jsonResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractResource extracts the resource name from a URI like swapsync://records/{resource}.
func extractResource(uri string) string {
	const prefix = uriScheme + "records/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
