package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

const recordColumns = "id, data, synced, offline_created, updated_at"

// Save inserts a record stamped as unsynced and offline-created.
func (s *recordStore) Save(ctx context.Context, resource domain.Resource, rec domain.Tracked) (int64, error) {
	if !resource.IsValid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}

	data, err := marshalFields(rec.Fields)
	if err != nil {
		return 0, err
	}

	id := rec.ID
	err = s.store.withTx(ctx, func(tx *sql.Tx) error {
		if id == 0 {
			minted, err := nextLocalID(ctx, tx, resource)
			if err != nil {
				return err
			}
			id = minted
		} else if id < 0 {
			if err := lowerLocalID(ctx, tx, resource, id); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (resource, id, data, synced, offline_created, updated_at)
			VALUES (?, ?, ?, 0, 1, ?)
		`, resource, id, data, formatTime(rec.UpdatedAt))
		if err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// nextLocalID mints the next negative id for resource. The sequence only
// moves down, so an id stays unique after its record is re-keyed to a
// server id or the partition is cleared.
func nextLocalID(ctx context.Context, tx *sql.Tx, resource domain.Resource) (int64, error) {
	var last, lowestRecord int64
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MIN(last_id), 0) FROM local_id_sequence WHERE resource = ?", resource).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("minting local id: %w", err)
	}
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MIN(id), 0) FROM records WHERE resource = ?", resource).Scan(&lowestRecord)
	if err != nil {
		return 0, fmt.Errorf("minting local id: %w", err)
	}

	id := min(last, lowestRecord, 0) - 1
	if err := lowerLocalID(ctx, tx, resource, id); err != nil {
		return 0, err
	}
	return id, nil
}

// lowerLocalID records id as minted when it is below the stored sequence.
func lowerLocalID(ctx context.Context, tx *sql.Tx, resource domain.Resource, id int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO local_id_sequence (resource, last_id) VALUES (?, ?)
		ON CONFLICT(resource) DO UPDATE SET last_id = MIN(last_id, excluded.last_id)
	`, resource, id)
	if err != nil {
		return fmt.Errorf("advancing local id sequence: %w", err)
	}
	return nil
}

// GetAll returns every record in the partition ordered by id.
func (s *recordStore) GetAll(ctx context.Context, resource domain.Resource) ([]domain.Tracked, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE resource = ? ORDER BY id", resource)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	return scanRecords(rows, resource)
}

// Get returns a record by id.
func (s *recordStore) Get(ctx context.Context, resource domain.Resource, id int64) (*domain.Tracked, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE resource = ? AND id = ?", resource, id)

	rec, err := scanRecord(row, resource)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update fully replaces (or inserts) the record keyed by rec.ID.
func (s *recordStore) Update(ctx context.Context, resource domain.Resource, rec domain.Tracked) error {
	if !resource.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}
	if rec.ID == 0 {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}

	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		return upsertRecord(ctx, tx, resource, rec)
	})
}

// Delete removes one record.
func (s *recordStore) Delete(ctx context.Context, resource domain.Resource, id int64) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM records WHERE resource = ? AND id = ?", resource, id); err != nil {
			return fmt.Errorf("deleting record: %w", err)
		}
		return nil
	})
}

// Clear removes every record in the partition.
func (s *recordStore) Clear(ctx context.Context, resource domain.Resource) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE resource = ?", resource); err != nil {
			return fmt.Errorf("clearing records: %w", err)
		}
		return nil
	})
}

// Replace swaps the partition contents in one transaction.
func (s *recordStore) Replace(ctx context.Context, resource domain.Resource, recs []domain.Tracked) error {
	if !resource.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownResource, resource)
	}

	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE resource = ?", resource); err != nil {
			return fmt.Errorf("clearing records: %w", err)
		}
		for i := range recs {
			if err := upsertRecord(ctx, tx, resource, recs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUnsynced returns records where synced=false.
func (s *recordStore) GetUnsynced(ctx context.Context, resource domain.Resource) ([]domain.Tracked, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE resource = ? AND synced = 0 ORDER BY id", resource)
	if err != nil {
		return nil, fmt.Errorf("querying unsynced records: %w", err)
	}
	return scanRecords(rows, resource)
}

// MarkAsSynced sets synced=true on a record.
func (s *recordStore) MarkAsSynced(ctx context.Context, resource domain.Resource, id int64) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE records SET synced = 1, updated_at = ? WHERE resource = ? AND id = ?",
			formatTime(time.Time{}), resource, id)
		if err != nil {
			return fmt.Errorf("marking record synced: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func upsertRecord(ctx context.Context, tx *sql.Tx, resource domain.Resource, rec domain.Tracked) error {
	data, err := marshalFields(rec.Fields)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (resource, id, data, synced, offline_created, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(resource, id) DO UPDATE SET
			data = excluded.data,
			synced = excluded.synced,
			offline_created = excluded.offline_created,
			updated_at = excluded.updated_at
	`, resource, rec.ID, data, boolToInt(rec.Synced), boolToInt(rec.OfflineCreated), formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upserting record %d: %w", rec.ID, err)
	}
	return nil
}

// marshalFields encodes fields without the id key; the id lives in its own column.
func marshalFields(fields domain.Fields) (string, error) {
	payload := fields.Clone()
	delete(payload, "id")

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshalling record data: %w", err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, resource domain.Resource) (*domain.Tracked, error) {
	var rec domain.Tracked
	var data, updatedAt string
	var synced, offlineCreated int

	if err := row.Scan(&rec.ID, &data, &synced, &offlineCreated, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &rec.Fields); err != nil {
		return nil, fmt.Errorf("unmarshalling record data: %w", err)
	}
	if rec.Fields == nil {
		rec.Fields = domain.Fields{}
	}

	rec.Resource = resource
	rec.Synced = synced != 0
	rec.OfflineCreated = offlineCreated != 0
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func scanRecords(rows *sql.Rows, resource domain.Resource) ([]domain.Tracked, error) {
	defer rows.Close()

	var recs []domain.Tracked //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows, resource)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return recs, nil
}
