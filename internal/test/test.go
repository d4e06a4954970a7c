// Package test provides the handful of assertion helpers used across this
// module's test suites: OK, Equals, and Assert, built directly on
// testing.TB rather than a third-party assertion library.
package test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// OK fails the test immediately if err is not nil.
func OK(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// Error fails the test immediately if err is nil.
func Error(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Equals fails the test if want and got are not deeply equal, printing a
// structural diff computed with go-cmp.
func Equals(t testing.TB, want, got interface{}, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("not equal (-want +got):\n%s", diff)
	}
}

// Assert fails the test with the formatted message if cond is false.
func Assert(t testing.TB, cond bool, format string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}
