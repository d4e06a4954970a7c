// Package commit implements the Commit Engine (§4.5): atomic and serial
// batch application of normalized writes against the structural store,
// including precondition checks, merge semantics, field transforms, and
// size/depth validation.
package commit

import (
	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/value"
	"google.golang.org/grpc/codes"
)

// MergeGranularity encodes how a Set's data combines with prior state.
type MergeGranularity int

const (
	MergeRoot MergeGranularity = iota
	MergeBranch
	MergeNode
)

// TransformKind tags a field transform, the explicit replacement for the
// teacher corpus's function-sentinel style of encoding server-side
// transforms (§9 Design Notes).
type TransformKind int

const (
	TransformServerTime TransformKind = iota
	TransformIncrement
	TransformArrayUnion
	TransformArrayRemove
)

// FieldTransform is applied against the prior field value, addressed by a
// dotted field path, after the Set's merge has been computed.
type FieldTransform struct {
	FieldPath []string
	Kind      TransformKind
	Operand   value.Value   // Increment: the amount to add
	Values    []value.Value // ArrayUnion/ArrayRemove operands
}

// FieldUpdate is one explicit field application for a node-granularity
// Set: a nil Value encodes deletion of that field.
type FieldUpdate struct {
	Path  []string
	Value *value.Value
}

// Precondition gates whether a Write is applied.
type Precondition struct {
	Exists         *bool
	LastUpdateTime *value.Timestamp
}

// Write is a single normalized write: either a Set (Delete == false) or a
// Delete.
type Write struct {
	Path         fspath.Path
	Delete       bool
	Merge        MergeGranularity
	Data         map[string]value.Value // MergeRoot/MergeBranch
	Fields       []FieldUpdate          // MergeNode
	Transforms   []FieldTransform
	Precondition *Precondition
}

// Mode selects atomic (all-or-nothing) or serial (per-op status)
// execution.
type Mode int

const (
	Atomic Mode = iota
	Serial
)

// OpStatus is one entry of a serial-mode result, aligned by index to the
// input Write.
type OpStatus struct {
	Code    codes.Code
	Message string
}

// Result is the outcome of a successful Commit call (in Atomic mode, a
// call that did not abort with an error).
type Result struct {
	ServerTime value.Timestamp
	Version    uint64
	Docs       []*document.Meta
	Status     []OpStatus // only populated in Serial mode
}

// Changed returns the subset of Docs whose HasChanges is true, in commit
// order — the list handed to change/trigger dispatch.
func (r *Result) Changed() []*document.Meta {
	var out []*document.Meta
	for _, d := range r.Docs {
		if d.HasChanges {
			out = append(out, d)
		}
	}
	return out
}
