package commit

import "github.com/restic/firestoremock/internal/value"

// getFieldPath reads the value addressed by a dotted field path, mirroring
// Firestore's FieldPath addressing used by field transforms.
func getFieldPath(m map[string]value.Value, path []string) (value.Value, bool) {
	if len(path) == 0 {
		return value.Value{}, false
	}
	cur := m
	for i, seg := range path {
		v, ok := cur[seg]
		if !ok {
			return value.Value{}, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if v.Kind != value.KindMap {
			return value.Value{}, false
		}
		cur = v.Map()
	}
	return value.Value{}, false
}

// setFieldPath sets the value at a dotted field path, creating
// intermediate maps as needed. m must already be owned (a fresh clone) so
// this can mutate in place.
func setFieldPath(m map[string]value.Value, path []string, v value.Value) {
	if len(path) == 0 {
		return
	}
	cur := m
	for i, seg := range path {
		if i == len(path)-1 {
			cur[seg] = v
			return
		}
		child, ok := cur[seg]
		if !ok || child.Kind != value.KindMap {
			cur[seg] = value.MapOf(map[string]value.Value{})
		}
		cur = cur[seg].Map()
	}
}

// deleteFieldPath removes the field at a dotted path, a no-op if any
// intermediate segment is missing or not a map.
func deleteFieldPath(m map[string]value.Value, path []string) {
	if len(path) == 0 {
		return
	}
	cur := m
	for i := 0; i < len(path)-1; i++ {
		child, ok := cur[path[i]]
		if !ok || child.Kind != value.KindMap {
			return
		}
		cur = child.Map()
	}
	delete(cur, path[len(path)-1])
}
