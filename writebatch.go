package firestoremock

import (
	"github.com/restic/firestoremock/internal/commit"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/value"
)

// WriteBatch accumulates writes for a single Commit call.
type WriteBatch struct {
	writes []commit.Write
}

// NewWriteBatch returns an empty batch.
func NewWriteBatch() *WriteBatch {
	return &WriteBatch{}
}

// Set appends a root-granularity Set, replacing path's entire document.
func (b *WriteBatch) Set(path fspath.Path, data map[string]value.Value, pre *commit.Precondition) *WriteBatch {
	b.writes = append(b.writes, commit.Write{
		Path: path, Merge: commit.MergeRoot, Data: data, Precondition: pre,
	})
	return b
}

// MergeFields appends a branch-granularity Set, overlaying data onto
// whatever document already lives at path.
func (b *WriteBatch) MergeFields(path fspath.Path, data map[string]value.Value, pre *commit.Precondition) *WriteBatch {
	b.writes = append(b.writes, commit.Write{
		Path: path, Merge: commit.MergeBranch, Data: data, Precondition: pre,
	})
	return b
}

// UpdatePaths appends a node-granularity Set: each FieldUpdate addresses
// an individual dotted field, independent of the others.
func (b *WriteBatch) UpdatePaths(path fspath.Path, fields []commit.FieldUpdate, pre *commit.Precondition) *WriteBatch {
	b.writes = append(b.writes, commit.Write{
		Path: path, Merge: commit.MergeNode, Fields: fields, Precondition: pre,
	})
	return b
}

// Transform appends field transforms atop the last write added for path,
// or as a standalone node-granularity Set with no field updates if path
// has no prior write in this batch.
func (b *WriteBatch) Transform(path fspath.Path, transforms []commit.FieldTransform, pre *commit.Precondition) *WriteBatch {
	key := path.String()
	for i := len(b.writes) - 1; i >= 0; i-- {
		if b.writes[i].Path.String() == key {
			b.writes[i].Transforms = append(b.writes[i].Transforms, transforms...)
			return b
		}
	}
	b.writes = append(b.writes, commit.Write{
		Path: path, Merge: commit.MergeNode, Transforms: transforms, Precondition: pre,
	})
	return b
}

// Delete appends a delete of path.
func (b *WriteBatch) Delete(path fspath.Path, pre *commit.Precondition) *WriteBatch {
	b.writes = append(b.writes, commit.Write{Path: path, Delete: true, Precondition: pre})
	return b
}

// Writes returns the accumulated writes, for a direct Controller.Commit or
// txn.Manager.Commit call.
func (b *WriteBatch) Writes() []commit.Write {
	return b.writes
}

// Len reports the number of writes accumulated so far.
func (b *WriteBatch) Len() int {
	return len(b.writes)
}
