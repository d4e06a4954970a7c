package query

import (
	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/store"
	"github.com/restic/firestoremock/internal/value"
)

// Predicate tests one visible, existing document against a query's filter
// terms; the evaluator only resolves scope and visibility (§4.7).
type Predicate func(*document.Meta) bool

// Evaluate walks s from q.Parent (root if unset), collecting every
// visible, existing document matching q's scope and passing predicate.
// The caller must hold s's lock for the duration of the call.
func Evaluate(s *store.Store, q DocumentQuery, serverTime value.Timestamp, predicate Predicate) ([]*document.Meta, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	var startDocs []*store.MasterDocument

	if q.Parent.Kind() == fspath.KindRoot {
		startDocs = []*store.MasterDocument{s.Root()}
	} else {
		doc, ok := s.LookupDocument(q.Parent)
		if !ok {
			return nil, nil
		}
		startDocs = []*store.MasterDocument{doc}
	}

	var out []*document.Meta
	for _, doc := range startDocs {
		walkDocument(s, doc, q, serverTime, predicate, &out)
	}
	return out, nil
}

func walkDocument(s *store.Store, doc *store.MasterDocument, q DocumentQuery, serverTime value.Timestamp, predicate Predicate, out *[]*document.Meta) {
	for name, coll := range doc.Children() {
		if q.CollectionID == "" || q.CollectionID == name {
			collectCollection(coll, q, serverTime, predicate, out)
		}
		if q.AllDescendants {
			for _, child := range coll.Documents() {
				walkDocument(s, child, q, serverTime, predicate, out)
			}
		}
	}
}

func collectCollection(coll *store.InternalCollection, q DocumentQuery, serverTime value.Timestamp, predicate Predicate, out *[]*document.Meta) {
	for _, md := range coll.Documents() {
		st := resolveVisibility(md, q, serverTime)
		if !st.Exists {
			continue
		}
		meta := document.FromState(parentOf(md.Path()), md.Path().String(), md.Path().Last(), serverTime, st)
		if predicate == nil || predicate(meta) {
			*out = append(*out, meta)
		}
	}
}

func resolveVisibility(md *store.MasterDocument, q DocumentQuery, serverTime value.Timestamp) document.State {
	if q.ReadTime == nil {
		return md.Current()
	}
	return md.SnapshotAt(serverTime, *q.ReadTime, true)
}

func parentOf(p fspath.Path) string {
	parent, ok := p.Parent()
	if !ok {
		return ""
	}
	return parent.String()
}
