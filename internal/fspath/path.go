// Package fspath implements the Path Index (§4.1): parsing, validating,
// classifying, and caching the canonical "/"-separated paths that address
// every node in the structural store.
package fspath

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/restic/firestoremock/internal/status"
)

// Kind classifies a parsed path.
type Kind int

const (
	KindRoot Kind = iota
	KindCollection
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindCollection:
		return "collection"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Path is an immutable, interned canonical path. The zero value is the
// root path.
type Path struct {
	raw      string
	segments []string
	kind     Kind
}

// Root is the synthetic empty path every tree hangs from.
var Root = Path{kind: KindRoot}

// String returns the canonical "/"-joined representation.
func (p Path) String() string { return p.raw }

// Kind reports whether p is root, a collection, or a document.
func (p Path) Kind() Kind { return p.kind }

// Segments returns the path's segments. The caller must not mutate the
// returned slice.
func (p Path) Segments() []string { return p.segments }

// Depth returns the number of segments (0 for root).
func (p Path) Depth() int { return len(p.segments) }

// Last returns the final segment, or "" for root.
func (p Path) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent returns the parent path and true, or (Root, false) if p is
// already root. The parent of a document is a collection; the parent of
// a collection is a document or root.
func (p Path) Parent() (Path, bool) {
	if len(p.segments) == 0 {
		return Root, false
	}
	return mustBuild(p.segments[:len(p.segments)-1]), true
}

// Child returns the path reached by appending segment to p.
func (p Path) Child(segment string) Path {
	segs := make([]string, len(p.segments)+1)
	copy(segs, p.segments)
	segs[len(p.segments)] = segment
	return mustBuild(segs)
}

func classify(segs []string) Kind {
	switch {
	case len(segs) == 0:
		return KindRoot
	case len(segs)%2 == 1:
		return KindCollection
	default:
		return KindDocument
	}
}

func mustBuild(segs []string) Path {
	p, err := build(segs)
	if err != nil {
		panic(err)
	}
	return p
}

func build(segs []string) (Path, error) {
	for _, s := range segs {
		if s == "" {
			return Path{}, status.InvalidArgument("path segment must not be empty")
		}
	}
	raw := strings.Join(segs, "/")
	return Path{raw: raw, segments: segs, kind: classify(segs)}, nil
}

// cache caches parsed paths by their canonical string form, bounded so
// adversarial inputs (e.g. a query walking many distinct generated
// collection IDs) cannot grow it unboundedly.
type cache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, Path]
}

const cacheSize = 4096

var pathCache = newCache()

func newCache() *cache {
	c, err := lru.New[string, Path](cacheSize)
	if err != nil {
		panic(err)
	}
	return &cache{cache: c}
}

// Parse splits raw on "/" and validates every segment is non-empty,
// returning InvalidArgument on malformed input. An empty string parses to
// Root.
func Parse(raw string) (Path, error) {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return Root, nil
	}

	pathCache.mu.Lock()
	if p, ok := pathCache.cache.Get(raw); ok {
		pathCache.mu.Unlock()
		return p, nil
	}
	pathCache.mu.Unlock()

	segs := strings.Split(raw, "/")
	p, err := build(segs)
	if err != nil {
		return Path{}, err
	}

	pathCache.mu.Lock()
	pathCache.cache.Add(raw, p)
	pathCache.mu.Unlock()

	return p, nil
}

// Assert parses raw and fails with InvalidArgument unless its kind is one
// of allowed.
func Assert(raw string, allowed ...Kind) (Path, error) {
	p, err := Parse(raw)
	if err != nil {
		return Path{}, err
	}
	for _, k := range allowed {
		if p.kind == k {
			return p, nil
		}
	}
	return Path{}, status.InvalidArgument("path %q has kind %s, expected one of %v", raw, p.kind, allowed)
}

// Template is a parsed route template such as "items/{id}", used by
// trigger matching (§4.8).
type Template struct {
	parts []templatePart
}

type templatePart struct {
	literal string
	param   string // empty if this part is a literal
}

// ParseTemplate parses a route template. "{name}" parts bind a named
// parameter; all other parts must match literally.
func ParseTemplate(raw string) Template {
	raw = strings.Trim(raw, "/")
	var parts []templatePart
	if raw != "" {
		for _, seg := range strings.Split(raw, "/") {
			if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
				parts = append(parts, templatePart{param: seg[1 : len(seg)-1]})
			} else {
				parts = append(parts, templatePart{literal: seg})
			}
		}
	}
	return Template{parts: parts}
}

// Match attempts to match p against the template, returning the extracted
// parameters and true on success, or (nil, false) on any segment mismatch
// or length mismatch.
func (t Template) Match(p Path) (map[string]string, bool) {
	if len(p.segments) != len(t.parts) {
		return nil, false
	}
	params := make(map[string]string)
	for i, part := range t.parts {
		seg := p.segments[i]
		if part.param != "" {
			params[part.param] = seg
			continue
		}
		if part.literal != seg {
			return nil, false
		}
	}
	return params, true
}
