// Package firestoremock gives a (very brief) introduction to the structure
// of the source code.
//
// Overview
//
// The packages are structured so that cmd/ contains the main package for
// the firestoremock binary, and internal/ contains almost all code in
// library form. We've chosen to use the internal/ path so that the
// packages cannot be imported by other programs: at the moment
// firestoremock is meant to be driven through the Controller type at the
// module root, not through its internal packages directly.
package firestoremock
