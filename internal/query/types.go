// Package query implements the Query Evaluator (§4.7): scope resolution
// across the structural store plus the pre-execution validation rules for
// a DocumentQuery. Predicate evaluation itself, ordering, cursors, offset,
// limit, and projection are left to the caller (§4.7).
package query

import (
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/value"
)

// Operator tags a field filter's comparison.
type Operator int

const (
	LessThan Operator = iota
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Equal
	NotEqual
	ArrayContains
	ArrayContainsAny
	In
	NotIn
)

// isInequality reports whether o is counted against the 10-distinct-field
// inequality limit.
func (o Operator) isInequality() bool {
	switch o {
	case LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual, NotEqual, NotIn:
		return true
	default:
		return false
	}
}

func (o Operator) isDisjunctive() bool {
	switch o {
	case In, NotIn, ArrayContainsAny, ArrayContains:
		return true
	default:
		return false
	}
}

// FieldFilter is one predicate term of a query, carried for validation;
// the evaluator does not itself interpret it (§4.7).
type FieldFilter struct {
	Path   []string
	Op     Operator
	Value  value.Value
	Values []value.Value // IN / NOT_IN / ARRAY_CONTAINS_ANY operands
}

// Ordering is one explicit sort key.
type Ordering struct {
	Path       []string
	Descending bool
}

// DistanceMeasure selects a vector distance function for FindNearest.
type DistanceMeasure int

const (
	DistanceUnspecified DistanceMeasure = iota
	Euclidean
	Cosine
	DotProduct
)

// FindNearest describes a vector-similarity search clause.
type FindNearest struct {
	VectorField       []string
	QueryVector       []float64
	Limit             int
	DistanceMeasure   DistanceMeasure
	DistanceThreshold *float64
}

// DocumentQuery describes a query's scope and predicate terms (§4.7).
type DocumentQuery struct {
	Parent         fspath.Path
	AllDescendants bool
	CollectionID   string
	ReadTime       *value.Timestamp

	Filters   []FieldFilter
	Orderings []Ordering
	Find      *FindNearest

	Transaction    []byte
	NewTransaction bool
}
