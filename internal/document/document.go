// Package document defines MetaDocument (§6), the deeply-frozen snapshot
// type returned to every caller of a commit, transaction read, or query:
// the structural store never hands out its own live nodes.
package document

import "github.com/restic/firestoremock/internal/value"

// State is the minimal existence/data/versioning state of a document at
// one instant, shared by the structural store's current state, its
// history entries, and MetaDocument itself.
type State struct {
	Exists     bool
	CreateTime value.Timestamp
	UpdateTime value.Timestamp
	Version    uint64
	Data       map[string]value.Value
}

// Clone returns a defensive deep copy of s, safe to hand to a caller
// without aliasing the structural store's own storage.
func (s State) Clone() State {
	s.Data = value.CloneMap(s.Data)
	return s
}

// Meta is the deeply-frozen value snapshot callers receive. Its Data is
// never the structural store's live map; CloneData returns a mutable
// owned copy for callers who need to edit it.
type Meta struct {
	Parent     string
	Path       string
	ID         string
	ServerTime value.Timestamp
	State
	HasChanges bool
	Previous   *Meta
}

// Data returns the document's field map. The returned map must not be
// mutated by the caller; use CloneData for an owned copy.
func (m *Meta) Data() map[string]value.Value {
	if !m.Exists {
		return nil
	}
	return m.State.Data
}

// CloneData returns an owned, mutable deep copy of the document's data,
// or nil if the document does not exist.
func (m *Meta) CloneData() map[string]value.Value {
	if !m.Exists {
		return nil
	}
	return value.CloneMap(m.State.Data)
}

// Fingerprint returns a content hash of the document's fields, 0 for a
// non-existent document. Two Metas holding equal data always have equal
// Fingerprints, independent of field insertion order; equal Fingerprints
// do not prove equal data (e.g. Int(1) and Str("1") render alike).
func (m *Meta) Fingerprint() uint64 {
	if !m.Exists {
		return 0
	}
	return value.Fingerprint(m.State.Data)
}

// FromState builds a MetaDocument from a structural store snapshot.
func FromState(parent, path, id string, serverTime value.Timestamp, st State) *Meta {
	return &Meta{Parent: parent, Path: path, ID: id, ServerTime: serverTime, State: st}
}

// NewNonExistent builds the MetaDocument returned for a path with no
// visible state, e.g. a direct miss or a historical read past the
// retention window.
func NewNonExistent(parent, path, id string, serverTime value.Timestamp) *Meta {
	return &Meta{Parent: parent, Path: path, ID: id, ServerTime: serverTime}
}
