// Package value implements the typed value model the mock stores and
// compares: the tagged variant described in spec §3/§4.2, its total
// ordering, and its equality semantics.
package value

import (
	"fmt"
	"math"
	"sort"
)

// Kind tags the variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindTimestamp
	KindString
	KindBytes
	KindReference
	KindGeoPoint
	KindArray
	KindVector
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindTimestamp:
		return "timestamp"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindReference:
		return "reference"
	case KindGeoPoint:
		return "geopoint"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// isNumber reports whether k is one of the two numeric kinds.
func (k Kind) isNumber() bool { return k == KindInt || k == KindDouble }

// Timestamp is seconds+nanoseconds since epoch, matching the wire
// representation of a Firestore timestamp exactly (no monotonic reading).
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

func (t Timestamp) Compare(o Timestamp) int {
	if t.Seconds != o.Seconds {
		return cmpInt64(t.Seconds, o.Seconds)
	}
	return cmpInt64(int64(t.Nanos), int64(o.Nanos))
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Reference addresses a document, optionally qualified by a database
// identity ("project/database") distinct from the local mock's own.
type Reference struct {
	Database string // e.g. "projects/p/databases/(default)"; empty = local
	Path     string // canonical document path, "/"-joined segments
}

func (r Reference) sameDatabase(o Reference) bool { return r.Database == o.Database }

// Value is a tagged variant over the Firestore value kinds.
type Value struct {
	Kind Kind

	boolV      bool
	intV       int64
	doubleV    float64
	timestampV Timestamp
	stringV    string
	bytesV     []byte
	refV       Reference
	geoV       GeoPoint
	arrayV     []Value
	vectorV    []float64
	mapV       map[string]Value
}

func Null() Value                    { return Value{Kind: KindNull} }
func Bool(b bool) Value              { return Value{Kind: KindBool, boolV: b} }
func Int(i int64) Value              { return Value{Kind: KindInt, intV: i} }
func Double(f float64) Value         { return Value{Kind: KindDouble, doubleV: f} }
func Str(s string) Value             { return Value{Kind: KindString, stringV: s} }
func BytesOf(b []byte) Value         { c := make([]byte, len(b)); copy(c, b); return Value{Kind: KindBytes, bytesV: c} }
func TimestampOf(t Timestamp) Value  { return Value{Kind: KindTimestamp, timestampV: t} }
func GeoPointOf(g GeoPoint) Value    { return Value{Kind: KindGeoPoint, geoV: g} }
func ReferenceOf(r Reference) Value  { return Value{Kind: KindReference, refV: r} }

func ArrayOf(vals []Value) Value {
	c := make([]Value, len(vals))
	copy(c, vals)
	return Value{Kind: KindArray, arrayV: c}
}

func VectorOf(dims []float64) Value {
	c := make([]float64, len(dims))
	copy(c, dims)
	return Value{Kind: KindVector, vectorV: c}
}

func MapOf(fields map[string]Value) Value {
	c := make(map[string]Value, len(fields))
	for k, v := range fields {
		c[k] = v
	}
	return Value{Kind: KindMap, mapV: c}
}

func (v Value) Bool() bool             { return v.boolV }
func (v Value) Int() int64             { return v.intV }
func (v Value) Double() float64        { return v.doubleV }
func (v Value) Timestamp() Timestamp   { return v.timestampV }
func (v Value) Str() string            { return v.stringV }
func (v Value) Bytes() []byte          { c := make([]byte, len(v.bytesV)); copy(c, v.bytesV); return c }
func (v Value) Reference() Reference   { return v.refV }
func (v Value) GeoPoint() GeoPoint     { return v.geoV }
func (v Value) Vector() []float64      { c := make([]float64, len(v.vectorV)); copy(c, v.vectorV); return c }

// Array returns the element slice. Callers must not mutate it; use Clone
// for an owned, independently mutable copy.
func (v Value) Array() []Value { return v.arrayV }

// Map returns the field map. Callers must not mutate it; use Clone for an
// owned, independently mutable copy.
func (v Value) Map() map[string]Value { return v.mapV }

// AsNumber returns the numeric value of an Int or Double kind.
func (v Value) AsNumber() float64 {
	if v.Kind == KindInt {
		return float64(v.intV)
	}
	return v.doubleV
}

// IsNaN reports whether v is a Double holding NaN.
func (v Value) IsNaN() bool {
	return v.Kind == KindDouble && math.IsNaN(v.doubleV)
}

// Clone returns a deep, independently-mutable copy of v.
func Clone(v Value) Value {
	switch v.Kind {
	case KindBytes:
		return BytesOf(v.bytesV)
	case KindArray:
		out := make([]Value, len(v.arrayV))
		for i, e := range v.arrayV {
			out[i] = Clone(e)
		}
		return Value{Kind: KindArray, arrayV: out}
	case KindVector:
		return VectorOf(v.vectorV)
	case KindMap:
		out := make(map[string]Value, len(v.mapV))
		for k, e := range v.mapV {
			out[k] = Clone(e)
		}
		return Value{Kind: KindMap, mapV: out}
	default:
		return v
	}
}

// CloneMap returns a deep, independently-mutable copy of a document's
// field map.
func CloneMap(m map[string]Value) map[string]Value {
	if m == nil {
		return nil
	}
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.boolV)
	case KindInt:
		return fmt.Sprintf("%d", v.intV)
	case KindDouble:
		return fmt.Sprintf("%v", v.doubleV)
	case KindString:
		return v.stringV
	default:
		return fmt.Sprintf("%s(%v)", v.Kind, v.describe())
	}
}

func (v Value) describe() interface{} {
	switch v.Kind {
	case KindBytes:
		return v.bytesV
	case KindTimestamp:
		return v.timestampV
	case KindReference:
		return v.refV
	case KindGeoPoint:
		return v.geoV
	case KindArray:
		return v.arrayV
	case KindVector:
		return v.vectorV
	case KindMap:
		return v.mapV
	default:
		return nil
	}
}

// sortedKeys returns the keys of m in ascending order, as required by the
// map ordering rule in §4.2.
func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
