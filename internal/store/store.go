// Package store implements the Structural Store and MVCC & History
// components (§4.3, §4.4): the tree of MasterDocument and InternalCollection
// nodes, their active/stub bookkeeping, and bounded historical reads.
//
// The whole tree is protected by a single mutex. This mirrors the spec's
// single-threaded cooperative scheduling model (§5): every commit runs to
// completion while holding the lock, and dispatch to listeners/triggers
// happens only after the lock is released.
package store

import (
	"sync"
	"time"

	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/stats"
	"github.com/restic/firestoremock/internal/value"
)

// HistoryWindow is the duration past which a historical read degrades to
// non-existence (§4.4).
const HistoryWindow = 60 * time.Second

// MasterDocument is the structural node for one document path: its
// current state, an append-only history of prior states (never pruned;
// SnapshotAt enforces HistoryWindow at read time), and the subcollections
// hanging off it.
type MasterDocument struct {
	path      fspath.Path
	parent    *InternalCollection
	current   document.State
	history   []document.State
	children  map[string]*InternalCollection
	leafCount int
}

func (m *MasterDocument) Path() fspath.Path { return m.path }

// Current returns a defensive copy of the document's current visible
// state.
func (m *MasterDocument) Current() document.State {
	return m.current.Clone()
}

// LeafCount is the number of existing documents at or below this node.
func (m *MasterDocument) LeafCount() int { return m.leafCount }

// IsStub reports whether this document is a structural placeholder: it
// does not itself exist but anchors existing descendants.
func (m *MasterDocument) IsStub() bool { return !m.current.Exists && m.leafCount > 0 }

// Children returns the subcollection map. Callers must not mutate it.
func (m *MasterDocument) Children() map[string]*InternalCollection { return m.children }

// SnapshotAt resolves the document's visible state at readTime, given the
// producing commit's serverTime, per §4.4's three-case rule. hasReadTime
// false means "use current state" (the common case for non-transactional,
// non-historical reads).
func (m *MasterDocument) SnapshotAt(serverTime, readTime value.Timestamp, hasReadTime bool) document.State {
	if !hasReadTime || readTime.Compare(m.current.UpdateTime) >= 0 {
		return m.current.Clone()
	}
	if clock.Since(readTime, serverTime) > HistoryWindow {
		return document.State{}
	}
	for i := len(m.history) - 1; i >= 0; i-- {
		h := m.history[i]
		if h.UpdateTime.Compare(readTime) <= 0 {
			return h.Clone()
		}
	}
	return document.State{}
}

// InternalCollection is the structural node for one collection path: its
// document nodes (existing ones and placeholders) and their aggregate
// counts.
type InternalCollection struct {
	path           fspath.Path
	parent         *MasterDocument
	documents      map[string]*MasterDocument
	activeDocCount int
	leafCount      int
}

func (c *InternalCollection) Path() fspath.Path { return c.path }

// ActiveDocCount is the number of immediate existing document children.
func (c *InternalCollection) ActiveDocCount() int { return c.activeDocCount }

// LeafCount is the number of existing documents anywhere beneath this
// collection.
func (c *InternalCollection) LeafCount() int { return c.leafCount }

// IsActive reports whether this collection has at least one existing
// immediate child document.
func (c *InternalCollection) IsActive() bool { return c.activeDocCount > 0 }

// IsStub reports whether this collection anchors existing descendants
// without itself having any existing immediate child.
func (c *InternalCollection) IsStub() bool { return c.activeDocCount == 0 && c.leafCount > 0 }

// Documents returns the immediate document map. Callers must not mutate
// it.
func (c *InternalCollection) Documents() map[string]*MasterDocument { return c.documents }

// Store is the structural store plus MVCC history plus operational
// statistics: the sole owner of every MasterDocument/InternalCollection.
type Store struct {
	root            *MasterDocument
	version         uint64
	Stats           *stats.Counters
	StructuralCache *stats.StructuralCache

	mu sync.Mutex
}

// New returns an empty store at version 0.
func New() *Store {
	s := &Store{
		Stats:           &stats.Counters{},
		StructuralCache: stats.NewStructuralCache(),
	}
	s.root = &MasterDocument{path: fspath.Root}
	return s
}

// Lock serializes all structural mutation and reads through this store,
// matching the single cooperative task of §5. Callers must Unlock.
func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

// Root returns the synthetic root document node.
func (s *Store) Root() *MasterDocument { return s.root }

// NextVersion allocates and returns the next global commit version. The
// caller must hold the lock.
func (s *Store) NextVersion() uint64 {
	s.version++
	return s.version
}

// Version returns the current global commit version. The caller must
// hold the lock for a consistent read.
func (s *Store) Version() uint64 { return s.version }

// EnsureDocument walks from the root, lazily creating every intermediate
// collection/document node, and returns the MasterDocument at p. p must
// be a document-kind path. The caller must hold the lock.
func (s *Store) EnsureDocument(p fspath.Path) *MasterDocument {
	doc, _ := s.ensurePath(p.Segments())
	return doc
}

// EnsureCollection is EnsureDocument's counterpart for collection-kind
// paths.
func (s *Store) EnsureCollection(p fspath.Path) *InternalCollection {
	_, coll := s.ensurePath(p.Segments())
	return coll
}

func (s *Store) ensurePath(segs []string) (*MasterDocument, *InternalCollection) {
	curDoc := s.root
	var curColl *InternalCollection
	path := fspath.Root
	for i, seg := range segs {
		path = path.Child(seg)
		if i%2 == 0 {
			if curDoc.children == nil {
				curDoc.children = make(map[string]*InternalCollection)
			}
			c, ok := curDoc.children[seg]
			if !ok {
				c = &InternalCollection{path: path, parent: curDoc, documents: make(map[string]*MasterDocument)}
				curDoc.children[seg] = c
			}
			curColl, curDoc = c, nil
		} else {
			d, ok := curColl.documents[seg]
			if !ok {
				d = &MasterDocument{path: path, parent: curColl}
				curColl.documents[seg] = d
			}
			curDoc, curColl = d, nil
		}
	}
	return curDoc, curColl
}

// LookupDocument finds the MasterDocument at p without creating it. The
// caller must hold the lock.
func (s *Store) LookupDocument(p fspath.Path) (*MasterDocument, bool) {
	doc, _, ok := s.lookupPath(p.Segments())
	return doc, ok
}

// LookupCollection finds the InternalCollection at p without creating
// it. The caller must hold the lock.
func (s *Store) LookupCollection(p fspath.Path) (*InternalCollection, bool) {
	_, coll, ok := s.lookupPath(p.Segments())
	return coll, ok
}

func (s *Store) lookupPath(segs []string) (*MasterDocument, *InternalCollection, bool) {
	curDoc := s.root
	var curColl *InternalCollection
	for i, seg := range segs {
		if i%2 == 0 {
			if curDoc.children == nil {
				return nil, nil, false
			}
			c, ok := curDoc.children[seg]
			if !ok {
				return nil, nil, false
			}
			curColl, curDoc = c, nil
		} else {
			d, ok := curColl.documents[seg]
			if !ok {
				return nil, nil, false
			}
			curDoc, curColl = d, nil
		}
	}
	return curDoc, curColl, true
}

// Apply overwrites md's current visible state at the given commit
// version/time, appending its prior state to history and propagating
// leaf-count changes up the tree. It reports false, leaving md entirely
// untouched, when newExists/newData are identical to the current state
// (the commit's no-op bookkeeping, §4.5/§8).
func (s *Store) Apply(md *MasterDocument, commitVersion uint64, commitTime value.Timestamp, newExists bool, newData map[string]value.Value) bool {
	prior := md.current
	if prior.Exists == newExists && (!newExists || value.EqualDocument(prior.Data, newData)) {
		return false
	}

	md.history = append(md.history, prior)

	createTime := prior.CreateTime
	switch {
	case newExists && !prior.Exists:
		createTime = commitTime
	case !newExists:
		createTime = value.Timestamp{}
	}

	md.current = document.State{
		Exists:     newExists,
		CreateTime: createTime,
		UpdateTime: commitTime,
		Version:    commitVersion,
		Data:       value.CloneMap(newData),
	}

	if prior.Exists != newExists {
		delta := 1
		if !newExists {
			delta = -1
		}
		s.propagateLeaf(md, delta)
		s.StructuralCache.Invalidate()
	}
	return true
}

func (s *Store) propagateLeaf(md *MasterDocument, delta int) {
	md.leafCount += delta
	coll := md.parent
	immediate := true
	for coll != nil {
		coll.leafCount += delta
		if immediate {
			coll.activeDocCount += delta
			immediate = false
		}
		parentDoc := coll.parent
		if parentDoc == nil {
			break
		}
		parentDoc.leafCount += delta
		coll = parentDoc.parent
	}
}

// Reset clears every node and zeros the version counter and operational
// statistics.
func (s *Store) Reset() {
	s.root = &MasterDocument{path: fspath.Root}
	s.version = 0
	s.Stats.Reset()
	s.StructuralCache.Invalidate()
}

// Clear clears every node and zeros the version counter, but preserves
// operational statistics (§4.5/§9 Open Questions).
func (s *Store) Clear() {
	s.root = &MasterDocument{path: fspath.Root}
	s.version = 0
	s.StructuralCache.Invalidate()
}

// ExistingDocuments returns every MasterDocument in the tree whose current
// state exists, used to synthesize a change watcher's initial event
// (§4.8). The caller must hold the lock.
func (s *Store) ExistingDocuments() []*MasterDocument {
	var out []*MasterDocument
	var walk func(*InternalCollection)
	walk = func(c *InternalCollection) {
		for _, d := range c.documents {
			if d.current.Exists {
				out = append(out, d)
			}
			for _, child := range d.children {
				walk(child)
			}
		}
	}
	for _, child := range s.root.children {
		walk(child)
	}
	return out
}

// StructuralTotals recomputes (or returns cached) active/leaf totals
// across the whole tree, for diagnostics and the §8 invariants.
func (s *Store) StructuralTotals() (activeTotal, leafTotal int) {
	return s.StructuralCache.Snapshot(func() (int, int) {
		active, leaf := 0, 0
		var walk func(*InternalCollection)
		walk = func(c *InternalCollection) {
			active += c.activeDocCount
			leaf += c.leafCount
			for _, d := range c.documents {
				for _, child := range d.children {
					walk(child)
				}
			}
		}
		for _, child := range s.root.children {
			walk(child)
		}
		return active, leaf
	})
}
