package services

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driving"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

// Ensure OfflineAPI implements the interface.
var _ driving.RecordService = (*OfflineAPI)(nil)

// FieldOffline marks a result that was applied locally and queued for sync.
const FieldOffline = "offline"

var apiLog = logger.Scope("api")

// OfflineAPI is the offline-aware facade over the remote API. Every write
// tries the server first; on failure or when offline it writes locally,
// queues the operation and returns an optimistic result.
type OfflineAPI struct {
	records driven.RecordStore
	queue   driven.OperationQueue
	ids     driven.IDMapStore
	remote  driven.RemoteAPI
	conn    driven.Connectivity
}

// NewOfflineAPI creates the facade.
func NewOfflineAPI(
	records driven.RecordStore,
	queue driven.OperationQueue,
	ids driven.IDMapStore,
	remote driven.RemoteAPI,
	conn driven.Connectivity,
) *OfflineAPI {
	return &OfflineAPI{
		records: records,
		queue:   queue,
		ids:     ids,
		remote:  remote,
		conn:    conn,
	}
}

// Create posts data, falling back to a local record plus a queued CREATE.
func (a *OfflineAPI) Create(ctx context.Context, resource domain.Resource, data domain.Fields) (domain.Fields, error) {
	if !resource.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}
	payload := withoutID(data)

	if a.conn.Online() {
		out, err := a.remote.Create(ctx, resource, payload)
		if err == nil {
			if id, ok := out.ID(); ok {
				a.writeThrough(ctx, resource, confirmed(id, payload, out))
			}
			return out, nil
		}
		apiLog.Warn("create %s failed, queueing: %v", resource, err)
	}

	id, err := a.records.Save(ctx, resource, domain.Tracked{Fields: payload})
	if err != nil {
		return nil, err
	}
	if _, err := a.queue.Add(ctx, domain.PendingOperation{
		Type:     domain.OperationCreate,
		Resource: resource,
		RecordID: id,
		Data:     payload,
	}); err != nil {
		return nil, err
	}

	return optimistic(payload, id), nil
}

// Update puts data, falling back to merging it into the local copy plus a
// queued UPDATE.
func (a *OfflineAPI) Update(
	ctx context.Context, resource domain.Resource, id int64, data domain.Fields,
) (domain.Fields, error) {
	if err := validateTarget(resource, id); err != nil {
		return nil, err
	}
	payload := withoutID(data)

	if a.conn.Online() {
		if serverID, err := resolveRecordID(ctx, a.ids, resource, id); err == nil {
			out, err := a.remote.Update(ctx, resource, serverID, payload)
			if err == nil {
				a.writeThrough(ctx, resource, confirmed(serverID, payload, out))
				return out, nil
			}
			apiLog.Warn("update %s #%d failed, queueing: %v", resource, id, err)
		} else {
			apiLog.Debug("update %s #%d waits for its create: %v", resource, id, err)
		}
	}

	if err := a.mergeLocal(ctx, resource, id, payload); err != nil {
		return nil, err
	}
	if _, err := a.queue.Add(ctx, domain.PendingOperation{
		Type:     domain.OperationUpdate,
		Resource: resource,
		RecordID: id,
		Data:     payload,
	}); err != nil {
		return nil, err
	}

	return optimistic(payload, id), nil
}

// Delete removes the record on the server, falling back to a queued DELETE.
// The local copy stays until the delete is confirmed.
func (a *OfflineAPI) Delete(ctx context.Context, resource domain.Resource, id int64) (domain.Fields, error) {
	if err := validateTarget(resource, id); err != nil {
		return nil, err
	}

	if a.conn.Online() {
		if serverID, err := resolveRecordID(ctx, a.ids, resource, id); err == nil {
			err := a.remote.Delete(ctx, resource, serverID)
			if err == nil {
				if err := a.records.Delete(ctx, resource, serverID); err != nil {
					return nil, err
				}
				return domain.Fields{"id": serverID}, nil
			}
			apiLog.Warn("delete %s #%d failed, queueing: %v", resource, id, err)
		}
	}

	if _, err := a.queue.Add(ctx, domain.PendingOperation{
		Type:     domain.OperationDelete,
		Resource: resource,
		RecordID: id,
		Data:     domain.Fields{"id": id},
	}); err != nil {
		return nil, err
	}

	return optimistic(nil, id), nil
}

// GetAll lists the collection from the server and mirrors it locally. When
// the server cannot be reached the local partition is returned instead.
func (a *OfflineAPI) GetAll(ctx context.Context, resource domain.Resource) ([]domain.Fields, error) {
	if !resource.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}

	if a.conn.Online() {
		items, err := a.remote.List(ctx, resource)
		if err == nil {
			if err := a.refreshMirror(ctx, resource, items); err != nil {
				return nil, err
			}
		} else {
			apiLog.Warn("list %s failed, serving local copy: %v", resource, err)
		}
	}

	recs, err := a.records.GetAll(ctx, resource)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Fields, 0, len(recs))
	for _, rec := range recs {
		view := rec.View()
		if !rec.Synced {
			view[FieldOffline] = true
		}
		out = append(out, view)
	}
	return out, nil
}

// refreshMirror replaces the partition with the server set, carrying over
// offline-created records the server has not seen yet.
func (a *OfflineAPI) refreshMirror(ctx context.Context, resource domain.Resource, items []domain.Fields) error {
	mirror := make([]domain.Tracked, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		id, ok := item.ID()
		if !ok {
			apiLog.Warn("skipping %s item without id", resource)
			continue
		}
		seen[id] = true
		mirror = append(mirror, domain.Tracked{ID: id, Fields: withoutID(item), Synced: true})
	}

	unsynced, err := a.records.GetUnsynced(ctx, resource)
	if err != nil {
		return err
	}
	for _, rec := range unsynced {
		if rec.OfflineCreated && !seen[rec.ID] {
			mirror = append(mirror, rec)
		}
	}

	return a.records.Replace(ctx, resource, mirror)
}

// mergeLocal applies an offline update to the local copy when one exists.
func (a *OfflineAPI) mergeLocal(ctx context.Context, resource domain.Resource, id int64, data domain.Fields) error {
	rec, err := a.records.Get(ctx, resource, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fields := rec.Fields.Clone()
	maps.Copy(fields, data)
	rec.Fields = fields
	rec.Synced = false
	return a.records.Update(ctx, resource, *rec)
}

// writeThrough mirrors a confirmed server write. The server already holds the
// data, so a local failure is only logged.
func (a *OfflineAPI) writeThrough(ctx context.Context, resource domain.Resource, rec domain.Tracked) {
	if err := a.records.Update(ctx, resource, rec); err != nil {
		apiLog.Warn("caching %s #%d: %v", resource, rec.ID, err)
	}
}

func validateTarget(resource domain.Resource, id int64) error {
	if !resource.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}
	if id == 0 {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}
	return nil
}

func optimistic(data domain.Fields, id int64) domain.Fields {
	out := data.Clone()
	out["id"] = id
	out[FieldOffline] = true
	return out
}
