// Package backend converges a program's local state by running the
// package-manager commands described by a program.Descriptor.
//
// A primary command failure triggers the descriptor's fallback chain, run in
// order with the same placeholder value. The operation succeeds only when
// the primary command or every fallback succeeds.
package backend
