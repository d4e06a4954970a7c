package fspath_test

import (
	"testing"

	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/status"
	rtest "github.com/restic/firestoremock/internal/test"
	"google.golang.org/grpc/codes"
)

func TestParseClassifiesKindByDepth(t *testing.T) {
	root, err := fspath.Parse("")
	rtest.OK(t, err)
	rtest.Equals(t, fspath.KindRoot, root.Kind())

	coll, err := fspath.Parse("users")
	rtest.OK(t, err)
	rtest.Equals(t, fspath.KindCollection, coll.Kind())

	doc, err := fspath.Parse("users/ada")
	rtest.OK(t, err)
	rtest.Equals(t, fspath.KindDocument, doc.Kind())
	rtest.Equals(t, "ada", doc.Last())
}

func TestParseTrimsSurroundingSlashes(t *testing.T) {
	a, err := fspath.Parse("/users/ada/")
	rtest.OK(t, err)
	b, err := fspath.Parse("users/ada")
	rtest.OK(t, err)
	rtest.Equals(t, b.String(), a.String())
}

func TestParseRejectsEmptySegment(t *testing.T) {
	_, err := fspath.Parse("users//ada")
	rtest.Assert(t, err != nil, "expected an empty path segment to be rejected")
	rtest.Assert(t, status.Is(err, codes.InvalidArgument), "expected InvalidArgument, got %v", err)
}

func TestAssertRejectsDisallowedKind(t *testing.T) {
	_, err := fspath.Assert("users", fspath.KindDocument)
	rtest.Assert(t, err != nil, "expected a collection path to be rejected when only document is allowed")
}

func TestParentRoundTrips(t *testing.T) {
	doc, err := fspath.Parse("blogs/b1/posts/p1")
	rtest.OK(t, err)

	parent, ok := doc.Parent()
	rtest.Assert(t, ok, "expected a document to have a parent")
	rtest.Equals(t, "blogs/b1/posts", parent.String())
	rtest.Equals(t, fspath.KindCollection, parent.Kind())

	grandparent, ok := parent.Parent()
	rtest.Assert(t, ok, "expected a collection to have a parent")
	rtest.Equals(t, "blogs/b1", grandparent.String())

	_, ok = fspath.Root.Parent()
	rtest.Assert(t, !ok, "expected root to have no parent")
}

func TestChildAppendsSegment(t *testing.T) {
	coll, err := fspath.Parse("users")
	rtest.OK(t, err)
	doc := coll.Child("ada")
	rtest.Equals(t, "users/ada", doc.String())
	rtest.Equals(t, fspath.KindDocument, doc.Kind())
}

func TestTemplateMatchExtractsParams(t *testing.T) {
	tmpl := fspath.ParseTemplate("items/{id}")
	p, err := fspath.Parse("items/a1")
	rtest.OK(t, err)

	params, ok := tmpl.Match(p)
	rtest.Assert(t, ok, "expected items/a1 to match items/{id}")
	rtest.Equals(t, "a1", params["id"])

	other, err := fspath.Parse("items/a1/sub/b2")
	rtest.OK(t, err)
	_, ok = tmpl.Match(other)
	rtest.Assert(t, !ok, "expected a deeper path to fail a shallower template")
}

func TestTemplateMatchRejectsLiteralMismatch(t *testing.T) {
	tmpl := fspath.ParseTemplate("items/{id}")
	p, err := fspath.Parse("widgets/a1")
	rtest.OK(t, err)
	_, ok := tmpl.Match(p)
	rtest.Assert(t, !ok, "expected a literal segment mismatch to fail")
}
