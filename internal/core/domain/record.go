package domain

import "time"

// Fields is the resource-specific payload of a record. Its shape is owned
// by the backend; the client treats it as opaque JSON.
type Fields map[string]any

// Clone returns a shallow copy of the fields.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ID extracts the integer "id" field, accepting the numeric types JSON
// decoding and callers commonly produce.
func (f Fields) ID() (int64, bool) {
	switch v := f["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// Tracked is a locally cached record together with its sync flags.
type Tracked struct {
	// ID is the record id. Negative ids are locally minted surrogates.
	ID int64

	// Resource identifies the partition the record lives in.
	Resource Resource

	// Fields holds the backend-defined payload.
	Fields Fields

	// Synced is true once the server copy matches this local copy.
	Synced bool

	// OfflineCreated is true while the id has never been confirmed by the server,
	// so the record must be CREATEd rather than UPDATEd on sync.
	OfflineCreated bool

	// UpdatedAt is when the local copy last changed.
	UpdatedAt time.Time
}

// IsLocalID reports whether id was minted locally.
func IsLocalID(id int64) bool {
	return id < 0
}

// View returns the record payload with its id filled in, as handed to callers.
func (t Tracked) View() Fields {
	out := t.Fields.Clone()
	out["id"] = t.ID
	return out
}
