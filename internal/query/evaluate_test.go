package query_test

import (
	"testing"

	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/commit"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/query"
	"github.com/restic/firestoremock/internal/status"
	"github.com/restic/firestoremock/internal/store"
	rtest "github.com/restic/firestoremock/internal/test"
	"github.com/restic/firestoremock/internal/value"
	"google.golang.org/grpc/codes"
)

func mustPath(t *testing.T, raw string) fspath.Path {
	t.Helper()
	p, err := fspath.Assert(raw, fspath.KindDocument)
	rtest.OK(t, err)
	return p
}

func TestEvaluateCollectionGroupQuery(t *testing.T) {
	s := store.New()
	src := clock.Constant(value.Timestamp{Seconds: 1})
	e := commit.New(s, src)

	for _, p := range []string{"blogs/b1/posts/p1", "blogs/b2/posts/p2", "blogs/b1/other/x"} {
		_, err := e.Commit([]commit.Write{
			{Path: mustPath(t, p), Merge: commit.MergeRoot, Data: map[string]value.Value{"v": value.Int(1)}},
		}, commit.Atomic)
		rtest.OK(t, err)
	}

	s.Lock()
	defer s.Unlock()
	out, err := query.Evaluate(s, query.DocumentQuery{CollectionID: "posts", AllDescendants: true}, src.Now(), nil)
	rtest.OK(t, err)
	rtest.Equals(t, 2, len(out))

	paths := map[string]bool{}
	for _, m := range out {
		paths[m.Path] = true
	}
	rtest.Assert(t, paths["blogs/b1/posts/p1"] && paths["blogs/b2/posts/p2"], "expected exactly p1 and p2, got %v", paths)
}

func TestValidateRejectsNotInWithIn(t *testing.T) {
	q := query.DocumentQuery{Filters: []query.FieldFilter{
		{Path: []string{"a"}, Op: query.NotIn, Values: []value.Value{value.Int(1)}},
		{Path: []string{"b"}, Op: query.In, Values: []value.Value{value.Int(1)}},
	}}
	err := query.Validate(q)
	rtest.Assert(t, err != nil, "expected NOT_IN combined with IN to be rejected")
	rtest.Assert(t, status.Is(err, codes.InvalidArgument), "expected InvalidArgument, got %v", err)
}

func TestValidateRejectsOversizedOperandArray(t *testing.T) {
	vals := make([]value.Value, 11)
	for i := range vals {
		vals[i] = value.Int(int64(i))
	}
	q := query.DocumentQuery{Filters: []query.FieldFilter{{Path: []string{"a"}, Op: query.In, Values: vals}}}
	err := query.Validate(q)
	rtest.Assert(t, err != nil, "expected an 11-element IN operand array to be rejected")
}

func TestValidateFindNearestRejectsOrdering(t *testing.T) {
	q := query.DocumentQuery{
		Find: &query.FindNearest{VectorField: []string{"embedding"}, QueryVector: []float64{1, 2}, Limit: 10},
		Orderings: []query.Ordering{{Path: []string{"name"}}},
	}
	err := query.Validate(q)
	rtest.Assert(t, err != nil, "expected findNearest combined with an explicit ordering to be rejected")
}

func TestValidateMutualExclusionOfReadTimeAndTransaction(t *testing.T) {
	rt := value.Timestamp{Seconds: 1}
	q := query.DocumentQuery{ReadTime: &rt, Transaction: []byte("abc")}
	err := query.Validate(q)
	rtest.Assert(t, err != nil, "expected read_time and transaction to be mutually exclusive")
}

func TestValidateRejectsMixedDisjunctiveFilters(t *testing.T) {
	q := query.DocumentQuery{Filters: []query.FieldFilter{
		{Path: []string{"a"}, Op: query.In, Values: []value.Value{value.Int(1)}},
		{Path: []string{"b"}, Op: query.ArrayContainsAny, Values: []value.Value{value.Int(1)}},
	}}
	err := query.Validate(q)
	rtest.Assert(t, err != nil, "expected IN combined with ARRAY_CONTAINS_ANY to be rejected")
	rtest.Assert(t, status.Is(err, codes.InvalidArgument), "expected InvalidArgument, got %v", err)
}
