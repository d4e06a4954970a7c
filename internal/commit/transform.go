package commit

import "github.com/restic/firestoremock/internal/value"

// applyTransforms applies updateTransforms against the prior field value
// within the already-merged data, using serverTime for TransformServerTime
// (§4.5). data must already be owned (a fresh clone).
func applyTransforms(data map[string]value.Value, transforms []FieldTransform, serverTime value.Timestamp) {
	for _, tr := range transforms {
		switch tr.Kind {
		case TransformServerTime:
			setFieldPath(data, tr.FieldPath, value.TimestampOf(serverTime))
		case TransformIncrement:
			setFieldPath(data, tr.FieldPath, incrementField(data, tr.FieldPath, tr.Operand))
		case TransformArrayUnion:
			setFieldPath(data, tr.FieldPath, arrayUnion(data, tr.FieldPath, tr.Values))
		case TransformArrayRemove:
			setFieldPath(data, tr.FieldPath, arrayRemove(data, tr.FieldPath, tr.Values))
		}
	}
}

func incrementField(data map[string]value.Value, path []string, amount value.Value) value.Value {
	cur, ok := getFieldPath(data, path)
	if !ok || (cur.Kind != value.KindInt && cur.Kind != value.KindDouble) {
		return amount
	}
	if cur.Kind == value.KindInt && amount.Kind == value.KindInt {
		return value.Int(cur.Int() + amount.Int())
	}
	return value.Double(cur.AsNumber() + amount.AsNumber())
}

// arrayUnion appends each operand not already present (by canonical
// equality) to the prior array, preserving the order of survivors and of
// first occurrence among the operands.
func arrayUnion(data map[string]value.Value, path []string, operands []value.Value) value.Value {
	var base []value.Value
	if cur, ok := getFieldPath(data, path); ok && cur.Kind == value.KindArray {
		base = append([]value.Value{}, cur.Array()...)
	}
	for _, op := range operands {
		if !containsValue(base, op) {
			base = append(base, op)
		}
	}
	return value.ArrayOf(base)
}

// arrayRemove drops every element of the prior array equal (by canonical
// equality) to any operand.
func arrayRemove(data map[string]value.Value, path []string, operands []value.Value) value.Value {
	cur, ok := getFieldPath(data, path)
	if !ok || cur.Kind != value.KindArray {
		return value.ArrayOf(nil)
	}
	out := make([]value.Value, 0, len(cur.Array()))
	for _, e := range cur.Array() {
		if !containsValue(operands, e) {
			out = append(out, e)
		}
	}
	return value.ArrayOf(out)
}

func containsValue(haystack []value.Value, needle value.Value) bool {
	for _, v := range haystack {
		if value.Equal(v, needle) {
			return true
		}
	}
	return false
}
