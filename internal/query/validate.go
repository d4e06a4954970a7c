package query

import (
	"github.com/restic/firestoremock/internal/status"
	"github.com/restic/firestoremock/internal/value"
)

// Validate enforces the pre-execution rules of §4.7 against q.
func Validate(q DocumentQuery) error {
	if err := validateMutualExclusion(q); err != nil {
		return err
	}
	if err := validateDisjunctiveFilters(q); err != nil {
		return err
	}
	if err := validateInequalities(q); err != nil {
		return err
	}
	if err := validateOperandArrays(q); err != nil {
		return err
	}
	if q.Find != nil {
		if err := validateFindNearest(q); err != nil {
			return err
		}
	}
	return nil
}

func validateMutualExclusion(q DocumentQuery) error {
	set := 0
	if q.ReadTime != nil {
		set++
	}
	if q.Transaction != nil {
		set++
	}
	if q.NewTransaction {
		set++
	}
	if set > 1 {
		return status.InvalidArgument("read_time, transaction, and new_transaction are mutually exclusive")
	}
	if q.Transaction != nil && len(q.Transaction) == 0 {
		return status.InvalidArgument("transaction must be non-empty bytes")
	}
	return nil
}

func validateDisjunctiveFilters(q DocumentQuery) error {
	var disjunctiveCount int
	var hasNotIn, hasNotEqual bool
	for _, f := range q.Filters {
		if f.Op.isDisjunctive() {
			disjunctiveCount++
		}
		switch f.Op {
		case NotIn:
			hasNotIn = true
		case NotEqual:
			hasNotEqual = true
		}
	}
	if disjunctiveCount > 1 {
		return status.InvalidArgument("at most one of IN, NOT_IN, ARRAY_CONTAINS_ANY, or ARRAY_CONTAINS may appear in a query")
	}
	if hasNotIn && hasNotEqual {
		return status.InvalidArgument("NOT_IN cannot be combined with !=")
	}
	return nil
}

func validateInequalities(q DocumentQuery) error {
	fields := map[string]bool{}
	for _, f := range q.Filters {
		if f.Op.isInequality() {
			fields[fieldKey(f.Path)] = true
		}
	}
	if len(fields) > 10 {
		return status.InvalidArgument("at most 10 distinct fields may carry an inequality filter")
	}
	if len(fields) > 0 && len(q.Orderings) > 0 {
		if !fields[fieldKey(q.Orderings[0].Path)] {
			return status.InvalidArgument("the first ordering must name an inequality-filtered field")
		}
	}
	return nil
}

func validateOperandArrays(q DocumentQuery) error {
	for _, f := range q.Filters {
		switch f.Op {
		case In, NotIn, ArrayContainsAny:
			if err := validateOperandArray(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateOperandArray(f FieldFilter) error {
	n := len(f.Values)
	if n < 1 || n > 10 {
		return status.InvalidArgument("IN/NOT_IN/ARRAY_CONTAINS_ANY operand arrays must have 1 to 10 elements")
	}

	var kind value.Kind
	kindSet := false
	var db string
	dbSet := false

	for _, v := range f.Values {
		if v.Kind == value.KindNull {
			return status.InvalidArgument("IN/NOT_IN/ARRAY_CONTAINS_ANY operands may not include null")
		}
		if v.IsNaN() {
			return status.InvalidArgument("IN/NOT_IN/ARRAY_CONTAINS_ANY operands may not include NaN")
		}
		if f.Op == ArrayContainsAny {
			continue // mixed kinds permitted
		}
		if isNumberKind(v.Kind) {
			if kindSet && !isNumberKind(kind) {
				return status.InvalidArgument("operand array must hold a single homogeneous kind")
			}
			kind, kindSet = v.Kind, true
			continue
		}
		if kindSet && kind != v.Kind {
			return status.InvalidArgument("operand array must hold a single homogeneous kind")
		}
		kind, kindSet = v.Kind, true
		if v.Kind == value.KindReference {
			ref := v.Reference()
			if dbSet && ref.Database != db {
				return status.InvalidArgument("reference operands must share the same database")
			}
			db, dbSet = ref.Database, true
		}
	}
	return nil
}

func isNumberKind(k value.Kind) bool { return k == value.KindInt || k == value.KindDouble }

func validateFindNearest(q DocumentQuery) error {
	fn := q.Find
	if len(fn.VectorField) == 0 {
		return status.InvalidArgument("findNearest requires a vector_field")
	}
	if len(fn.QueryVector) == 0 {
		return status.InvalidArgument("findNearest requires a query_vector")
	}
	if !value.FiniteVector(fn.QueryVector) {
		return status.InvalidArgument("findNearest query_vector must contain only finite values")
	}
	if len(fn.QueryVector) > value.MaxVectorDim {
		return status.InvalidArgument("findNearest query_vector dimension exceeds %d", value.MaxVectorDim)
	}
	if fn.Limit <= 0 || fn.Limit > 1000 {
		return status.InvalidArgument("findNearest limit must be between 1 and 1000")
	}
	if fn.DistanceThreshold != nil && (*fn.DistanceThreshold < 0 || !value.FiniteVector([]float64{*fn.DistanceThreshold})) {
		return status.InvalidArgument("findNearest distance_threshold must be a non-negative finite number")
	}
	if len(q.Orderings) > 0 {
		return status.InvalidArgument("findNearest may not be combined with an explicit ordering")
	}
	vf := fieldKey(fn.VectorField)
	for _, f := range q.Filters {
		if f.Op.isInequality() && fieldKey(f.Path) == vf {
			return status.InvalidArgument("findNearest vector field may not appear in an inequality filter")
		}
	}
	return nil
}

func fieldKey(path []string) string {
	key := ""
	for i, p := range path {
		if i > 0 {
			key += "."
		}
		key += p
	}
	return key
}
