package value

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// kindRank implements the total order of §4.2:
// null < boolean < number < timestamp < string < bytes < reference <
// geopoint < array < vector < map.
func kindRank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindDouble:
		return 2
	case KindTimestamp:
		return 3
	case KindString:
		return 4
	case KindBytes:
		return 5
	case KindReference:
		return 6
	case KindGeoPoint:
		return 7
	case KindArray:
		return 8
	case KindVector:
		return 9
	case KindMap:
		return 10
	default:
		return 99
	}
}

// RangeComparable reports whether k supports <,<=,>,>= operators: number,
// timestamp, string, bytes, reference, geopoint. null and NaN are excluded
// by the caller via presence/NaN checks.
func RangeComparable(k Kind) bool {
	switch k {
	case KindInt, KindDouble, KindTimestamp, KindString, KindBytes, KindReference, KindGeoPoint:
		return true
	default:
		return false
	}
}

// Compare implements the total order across heterogeneous kinds described
// in §4.2. It never panics: values of different kinds are ordered by
// kindRank alone.
func Compare(a, b Value) int {
	ra, rb := kindRank(a.Kind), kindRank(b.Kind)
	if ra != rb {
		return cmpInt64(int64(ra), int64(rb))
	}

	switch a.Kind {
	case KindNull:
		return 0
	case KindBool:
		return compareBool(a.boolV, b.boolV)
	case KindInt, KindDouble:
		return compareNumber(a, b)
	case KindTimestamp:
		return a.timestampV.Compare(b.timestampV)
	case KindString:
		return strings.Compare(a.stringV, b.stringV)
	case KindBytes:
		return compareBytes(a.bytesV, b.bytesV)
	case KindReference:
		return compareReference(a.refV, b.refV)
	case KindGeoPoint:
		if c := cmpFloat64(a.geoV.Lat, b.geoV.Lat); c != 0 {
			return c
		}
		return cmpFloat64(a.geoV.Lon, b.geoV.Lon)
	case KindArray:
		return compareSlice(a.arrayV, b.arrayV)
	case KindVector:
		return compareVector(a.vectorV, b.vectorV)
	case KindMap:
		return compareMap(a.mapV, b.mapV)
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

// compareNumber orders NaN before -Infinity, equates -0 and 0, and treats
// NaN as equal only to NaN.
func compareNumber(a, b Value) int {
	x, y := a.AsNumber(), b.AsNumber()
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xNaN && yNaN:
		return 0
	case xNaN:
		return -1
	case yNaN:
		return 1
	}
	return cmpFloat64(x, y)
}

// compareBytes is lexicographic by unsigned byte, then by length.
func compareBytes(a, b []byte) int {
	if c := bytes.Compare(a, b); c != 0 {
		return c
	}
	return cmpInt64(int64(len(a)), int64(len(b)))
}

// idSentinel matches a numeric document-ID sentinel segment such as
// "__id123__", where 123 lies in the int64 range.
func idSentinel(seg string) (int64, bool) {
	const prefix, suffix = "__id", "__"
	if !strings.HasPrefix(seg, prefix) || !strings.HasSuffix(seg, suffix) || len(seg) <= len(prefix)+len(suffix) {
		return 0, false
	}
	digits := seg[len(prefix) : len(seg)-len(suffix)]
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// compareReference compares database identity first, then path segments;
// numeric ID sentinels sort numerically before all string segments at the
// same depth.
func compareReference(a, b Reference) int {
	if a.Database != b.Database {
		return strings.Compare(a.Database, b.Database)
	}
	segsA := strings.Split(strings.Trim(a.Path, "/"), "/")
	segsB := strings.Split(strings.Trim(b.Path, "/"), "/")
	if a.Path == "" {
		segsA = nil
	}
	if b.Path == "" {
		segsB = nil
	}
	n := len(segsA)
	if len(segsB) < n {
		n = len(segsB)
	}
	for i := 0; i < n; i++ {
		if c := compareSegment(segsA[i], segsB[i]); c != 0 {
			return c
		}
	}
	return cmpInt64(int64(len(segsA)), int64(len(segsB)))
}

func compareSegment(a, b string) int {
	idA, okA := idSentinel(a)
	idB, okB := idSentinel(b)
	switch {
	case okA && okB:
		return cmpInt64(idA, idB)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// compareSlice implements element-wise comparison with "shorter first" on
// a common prefix tie, shared by Array values.
func compareSlice(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmpInt64(int64(len(a)), int64(len(b)))
}

func compareVector(a, b []float64) int {
	if c := cmpInt64(int64(len(a)), int64(len(b))); c != 0 {
		return c
	}
	for i := range a {
		if c := cmpFloat64(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareMap compares sorted keys then paired values, shorter first on
// tie, matching §4.2.
func compareMap(a, b map[string]Value) int {
	ka, kb := sortedKeys(a), sortedKeys(b)
	n := len(ka)
	if len(kb) < n {
		n = len(kb)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
		if c := Compare(a[ka[i]], b[kb[i]]); c != 0 {
			return c
		}
	}
	return cmpInt64(int64(len(ka)), int64(len(kb)))
}
