package commit

import "github.com/restic/firestoremock/internal/value"

// mergeBranch deep-merges newData into prior: maps merge recursively;
// scalars, arrays, and mismatched kinds are replaced; keys present only
// in prior are retained (§4.5).
func mergeBranch(prior, newData map[string]value.Value) map[string]value.Value {
	result := value.CloneMap(prior)
	if result == nil {
		result = map[string]value.Value{}
	}
	for k, v := range newData {
		if v.Kind == value.KindMap {
			if existing, ok := result[k]; ok && existing.Kind == value.KindMap {
				result[k] = value.MapOf(mergeBranch(existing.Map(), v.Map()))
				continue
			}
		}
		result[k] = value.Clone(v)
	}
	return result
}

// mergeNode applies an explicit list of field updates to prior: each
// present Value is set, each nil Value deletes that field, and every
// field not named is left untouched (§4.5).
func mergeNode(prior map[string]value.Value, fields []FieldUpdate) map[string]value.Value {
	result := value.CloneMap(prior)
	if result == nil {
		result = map[string]value.Value{}
	}
	for _, f := range fields {
		if f.Value == nil {
			deleteFieldPath(result, f.Path)
		} else {
			setFieldPath(result, f.Path, value.Clone(*f.Value))
		}
	}
	return result
}
