package value

import "github.com/cespare/xxhash/v2"

// Fingerprint returns a cheap, order-independent content hash of fields,
// letting a caller compare two document snapshots without walking their
// full field maps. It hashes the same deterministic, sorted-key rendering
// MapOf's String() produces, so equal documents always hash equal.
func Fingerprint(fields map[string]Value) uint64 {
	return xxhash.Sum64String(MapOf(fields).String())
}
