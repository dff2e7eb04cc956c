package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// NoInput is the input schema for tools that take no arguments.
type NoInput struct{}

// ResultOutput is the outcome of one sync pass.
type ResultOutput struct {
	Success   int `json:"success"`
	Failed    int `json:"failed"`
	Abandoned int `json:"abandoned"`
}

// StatusOutput is the output schema for the sync_status tool.
type StatusOutput struct {
	Online         bool          `json:"online"`
	Syncing        bool          `json:"syncing"`
	PendingCount   int           `json:"pending_count"`
	AbandonedCount int           `json:"abandoned_count"`
	CanSyncNow     bool          `json:"can_sync_now"`
	LastSyncAt     string        `json:"last_sync_at,omitempty"`
	LastResult     *ResultOutput `json:"last_result,omitempty"`
}

// SyncNowOutput is the output schema for the sync_now tool.
type SyncNowOutput struct {
	Ran     bool          `json:"ran"`
	Message string        `json:"message"`
	Result  *ResultOutput `json:"result,omitempty"`
}

// OperationsOutput is the output schema for the queue listing tools.
type OperationsOutput struct {
	Operations []OperationOutput `json:"operations"`
	Count      int               `json:"count"`
}

// OperationOutput represents a single queued operation.
type OperationOutput struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Resource  string `json:"resource"`
	RecordID  int64  `json:"record_id,omitempty"`
	Retries   int    `json:"retries"`
	QueuedAt  string `json:"queued_at"`
	LastError string `json:"last_error,omitempty"`
}

// ListRecordsInput is the input schema for the list_records tool.
type ListRecordsInput struct {
	Resource string `json:"resource" jsonschema:"one of phones, customers, swaps, sales, repairs"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 50)"`
}

// ListRecordsOutput is the output schema for the list_records tool.
type ListRecordsOutput struct {
	Records []map[string]any `json:"records"`
	Count   int              `json:"count"`
	Total   int              `json:"total"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Report connectivity, pending and abandoned write counts, and the last sync",
	}, s.handleSyncStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_now",
		Description: "Replay queued writes to the backend if online and anything is pending",
	}, s.handleSyncNow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_pending",
		Description: "List queued writes in replay order",
	}, s.handleListPending)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_abandoned",
		Description: "List writes that exhausted their retries and need attention",
	}, s.handleListAbandoned)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_records",
		Description: "List records of a resource, including changes not yet synced",
	}, s.handleListRecords)
}

func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	s.ports.Status.Refresh(ctx)
	snap := s.ports.Status.Snapshot()

	out := StatusOutput{
		Online:         snap.Online,
		Syncing:        snap.Syncing,
		PendingCount:   snap.PendingCount,
		AbandonedCount: snap.AbandonedCount,
		CanSyncNow:     snap.CanSyncNow(),
		LastResult:     toResultOutput(snap.LastResult),
	}
	if !snap.LastSyncAt.IsZero() {
		out.LastSyncAt = snap.LastSyncAt.UTC().Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleSyncNow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, SyncNowOutput, error) {
	res, err := s.ports.Status.SyncNow(ctx)
	switch {
	case errors.Is(err, domain.ErrOffline):
		return nil, SyncNowOutput{Message: "backend unreachable; writes stay queued"}, nil
	case errors.Is(err, domain.ErrNothingToSync):
		return nil, SyncNowOutput{Message: "nothing to sync"}, nil
	case errors.Is(err, domain.ErrSyncInProgress):
		return nil, SyncNowOutput{Message: "a sync is already running"}, nil
	case err != nil:
		return nil, SyncNowOutput{}, err
	}

	return nil, SyncNowOutput{
		Ran:     true,
		Message: "sync complete",
		Result:  toResultOutput(&res),
	}, nil
}

func (s *Server) handleListPending(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, OperationsOutput, error) {
	if s.ports.Queue == nil {
		return nil, OperationsOutput{Operations: []OperationOutput{}}, nil
	}
	ops, err := s.ports.Queue.ListPending(ctx)
	if err != nil {
		return nil, OperationsOutput{}, err
	}
	return nil, toOperationsOutput(ops), nil
}

func (s *Server) handleListAbandoned(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, OperationsOutput, error) {
	if s.ports.Queue == nil {
		return nil, OperationsOutput{Operations: []OperationOutput{}}, nil
	}
	ops, err := s.ports.Queue.ListAbandoned(ctx)
	if err != nil {
		return nil, OperationsOutput{}, err
	}
	return nil, toOperationsOutput(ops), nil
}

func (s *Server) handleListRecords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRecordsInput,
) (*mcp.CallToolResult, ListRecordsOutput, error) {
	if s.ports.Records == nil {
		return nil, ListRecordsOutput{Records: []map[string]any{}}, nil
	}
	resource, err := domain.ParseResource(input.Resource)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.ports.Records.GetAll(ctx, resource)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}

	out := ListRecordsOutput{Total: len(rows)}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out.Records = make([]map[string]any, len(rows))
	for i, row := range rows {
		out.Records[i] = row
	}
	out.Count = len(out.Records)
	return nil, out, nil
}

func toResultOutput(res *domain.SyncResult) *ResultOutput {
	if res == nil {
		return nil
	}
	return &ResultOutput{
		Success:   res.Success,
		Failed:    res.Failed,
		Abandoned: res.Abandoned,
	}
}

func toOperationsOutput(ops []domain.PendingOperation) OperationsOutput {
	out := OperationsOutput{
		Operations: make([]OperationOutput, len(ops)),
		Count:      len(ops),
	}
	for i := range ops {
		out.Operations[i] = OperationOutput{
			ID:        ops[i].ID,
			Type:      string(ops[i].Type),
			Resource:  ops[i].Resource.String(),
			RecordID:  ops[i].RecordID,
			Retries:   ops[i].Retries,
			QueuedAt:  ops[i].Timestamp.UTC().Format(time.RFC3339),
			LastError: ops[i].LastError,
		}
	}
	return out
}
