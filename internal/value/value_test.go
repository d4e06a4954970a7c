package value_test

import (
	"math"
	"testing"

	rtest "github.com/restic/firestoremock/internal/test"
	"github.com/restic/firestoremock/internal/value"
)

func TestCompareKindOrder(t *testing.T) {
	ordered := []value.Value{
		value.Null(),
		value.Bool(true),
		value.Int(5),
		value.TimestampOf(value.Timestamp{Seconds: 1}),
		value.Str("x"),
		value.BytesOf([]byte{1}),
		value.ReferenceOf(value.Reference{Path: "a/b"}),
		value.GeoPointOf(value.GeoPoint{Lat: 1, Lon: 1}),
		value.ArrayOf([]value.Value{value.Int(1)}),
		value.VectorOf([]float64{1, 2}),
		value.MapOf(map[string]value.Value{"a": value.Int(1)}),
	}

	for i := 0; i < len(ordered)-1; i++ {
		rtest.Assert(t, value.Compare(ordered[i], ordered[i+1]) < 0,
			"expected %v < %v", ordered[i].Kind, ordered[i+1].Kind)
	}
}

func TestCompareNumberNaN(t *testing.T) {
	nan := value.Double(math.NaN())
	negInf := value.Double(math.Inf(-1))
	rtest.Assert(t, value.Compare(nan, negInf) < 0, "NaN must sort before -Inf")
	rtest.Assert(t, value.Compare(nan, nan) == 0, "NaN must equal NaN under Compare")
	rtest.Assert(t, value.Equal(nan, nan), "NaN must equal NaN under Equal")
}

func TestCompareNegativeZero(t *testing.T) {
	zero := value.Double(0)
	negZero := value.Double(math.Copysign(0, -1))
	rtest.Assert(t, value.Compare(zero, negZero) == 0, "-0 must equal 0")
	rtest.Assert(t, value.Equal(zero, negZero), "-0 must equal 0 under Equal")
}

func TestCompareReferenceIDSentinel(t *testing.T) {
	numeric := value.ReferenceOf(value.Reference{Path: "c/__id9__"})
	str := value.ReferenceOf(value.Reference{Path: "c/abc"})
	rtest.Assert(t, value.Compare(numeric, str) < 0, "numeric id sentinel must sort before string segment")
}

func TestCompareArrayShorterFirst(t *testing.T) {
	short := value.ArrayOf([]value.Value{value.Int(1)})
	long := value.ArrayOf([]value.Value{value.Int(1), value.Int(2)})
	rtest.Assert(t, value.Compare(short, long) < 0, "shorter array must sort first on common-prefix tie")
}

func TestEqualTypeMismatch(t *testing.T) {
	rtest.Assert(t, !value.Equal(value.Int(1), value.Double(1)), "Int(1) and Double(1) are different kinds")
}

func TestEncodedSizeVector(t *testing.T) {
	fields := map[string]value.Value{
		"embedding": value.VectorOf(make([]float64, 128)),
	}
	size := value.EncodedSize(fields)
	rtest.Assert(t, size == len("embedding")+value.FieldOverheadBytes+8*128,
		"unexpected encoded size: %d", size)
}

func TestMapDepth(t *testing.T) {
	leaf := value.MapOf(map[string]value.Value{"x": value.Int(1)})
	nested := value.MapOf(map[string]value.Value{"a": leaf})
	rtest.Assert(t, value.MapDepth(nested.Map()) == 2, "expected depth 2, got %d", value.MapDepth(nested.Map()))
}

func TestFingerprintStableAcrossFieldOrder(t *testing.T) {
	a := map[string]value.Value{"a": value.Int(1), "b": value.Str("x")}
	b := map[string]value.Value{"b": value.Str("x"), "a": value.Int(1)}
	rtest.Equals(t, value.Fingerprint(a), value.Fingerprint(b))
}

func TestFingerprintDiffersOnContentChange(t *testing.T) {
	a := map[string]value.Value{"n": value.Int(1)}
	b := map[string]value.Value{"n": value.Int(2)}
	rtest.Assert(t, value.Fingerprint(a) != value.Fingerprint(b), "expected differing fields to fingerprint differently")
}
