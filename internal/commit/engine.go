package commit

import (
	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/stats"
	"github.com/restic/firestoremock/internal/status"
	"github.com/restic/firestoremock/internal/store"
	"github.com/restic/firestoremock/internal/value"
	"google.golang.org/grpc/codes"
)

// Engine applies batches of writes against a structural store under the
// atomic/serial semantics of §4.5.
type Engine struct {
	Store *store.Store
	Clock clock.Source
}

// New returns an Engine driving s, stamping commits with times from c.
func New(s *store.Store, c clock.Source) *Engine {
	return &Engine{Store: s, Clock: c}
}

// plannedOp is the outcome of evaluating one Write against the store's
// current state, before any mutation has happened.
type plannedOp struct {
	index     int
	write     *Write
	doc       *store.MasterDocument // nil until apply if the path had no node
	newExists bool
	newData   map[string]value.Value
	err       error
}

// Commit applies writes against the store. In Atomic mode, any failing
// write aborts the whole batch with that write's error and the store is
// left untouched. In Serial mode, every write is attempted independently
// and Result.Status carries one entry per write, aligned by index.
func (e *Engine) Commit(writes []Write, mode Mode) (*Result, error) {
	e.Store.Lock()
	defer e.Store.Unlock()

	serverTime := e.Clock.Now()

	// batchState buffers the in-progress result of each path touched more
	// than once in this batch, so later ops observe earlier ops' effect
	// rather than the store's pre-batch state (§4.5).
	batchState := make(map[string]document.State)

	plans := make([]plannedOp, len(writes))
	for i := range writes {
		plans[i] = e.plan(i, &writes[i], serverTime, batchState)
	}

	if mode == Atomic {
		for _, p := range plans {
			if p.err != nil {
				return nil, p.err
			}
		}
	}

	version := e.Store.NextVersion()

	result := &Result{ServerTime: serverTime, Version: version}
	if mode == Serial {
		result.Status = make([]OpStatus, len(writes))
	}

	for _, p := range plans {
		if p.err != nil {
			if mode == Serial {
				result.Status[p.index] = OpStatus{Code: status.Code(p.err), Message: status.Message(p.err)}
			}
			continue
		}

		if p.doc == nil {
			p.doc = e.Store.EnsureDocument(p.write.Path)
		}
		prior := p.doc.Current()
		changed := e.Store.Apply(p.doc, version, serverTime, p.newExists, p.newData)
		accountWrite(e.Store.Stats, p.write.Delete, prior.Exists, changed)

		meta := document.FromState(parentPath(p.write.Path), p.write.Path.String(), p.write.Path.Last(), serverTime, p.doc.Current())
		meta.HasChanges = changed
		if changed {
			prevCopy := prior.Clone()
			meta.Previous = document.FromState(meta.Parent, meta.Path, meta.ID, serverTime, prevCopy)
		}
		result.Docs = append(result.Docs, meta)

		if mode == Serial {
			result.Status[p.index] = OpStatus{Code: codes.OK}
		}
	}

	return result, nil
}

// accountWrite records the §4.5 statistics for one applied op: a delete on
// a document that existed counts as a deletion (or noop_deletes if it
// didn't); anything else counts as a write (or noop_writes if unchanged).
func accountWrite(s *stats.Counters, isDelete, priorExists, changed bool) {
	if isDelete {
		if priorExists {
			s.Delete()
		} else {
			s.NoopDelete()
		}
		return
	}
	if changed {
		s.Write()
	} else {
		s.NoopWrite()
	}
}

func parentPath(p fspath.Path) string {
	parent, ok := p.Parent()
	if !ok {
		return ""
	}
	return parent.String()
}

// plan evaluates one write against the store's current state: precondition
// check, merge, transform application, and validation. It performs no
// mutation; md is only looked up (nil if the path has no node yet), and
// Commit's apply phase creates missing nodes and updates state.
func (e *Engine) plan(index int, w *Write, serverTime value.Timestamp, batchState map[string]document.State) plannedOp {
	md, _ := e.Store.LookupDocument(w.Path)
	key := w.Path.String()

	prior, buffered := batchState[key]
	if !buffered && md != nil {
		prior = md.Current()
	}

	if err := checkPrecondition(w.Precondition, prior); err != nil {
		return plannedOp{index: index, write: w, doc: md, err: err}
	}

	if w.Delete {
		batchState[key] = document.State{Exists: false}
		return plannedOp{index: index, write: w, doc: md, newExists: false, newData: nil}
	}

	var merged map[string]value.Value
	switch w.Merge {
	case MergeRoot:
		merged = value.CloneMap(w.Data)
		if merged == nil {
			merged = map[string]value.Value{}
		}
	case MergeBranch:
		merged = mergeBranch(prior.Data, w.Data)
	case MergeNode:
		merged = mergeNode(prior.Data, w.Fields)
	}

	if len(w.Transforms) > 0 {
		applyTransforms(merged, w.Transforms, serverTime)
	}

	if err := validateDocument(merged); err != nil {
		return plannedOp{index: index, write: w, doc: md, err: err}
	}

	batchState[key] = document.State{Exists: true, UpdateTime: prior.UpdateTime, Data: merged}
	return plannedOp{index: index, write: w, doc: md, newExists: true, newData: merged}
}

func checkPrecondition(pre *Precondition, prior document.State) error {
	if pre == nil {
		return nil
	}
	if pre.Exists != nil {
		if *pre.Exists && !prior.Exists {
			return status.NotFound("document does not exist")
		}
		if !*pre.Exists && prior.Exists {
			return status.AlreadyExists("document already exists")
		}
	}
	if pre.LastUpdateTime != nil {
		if !prior.Exists || prior.UpdateTime.Compare(*pre.LastUpdateTime) != 0 {
			return status.FailedPrecondition("last update time precondition did not match")
		}
	}
	return nil
}
