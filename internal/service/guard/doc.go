// Package guard keeps two ghpm runs from converging the same host at once
// by scanning the process table for another ghpm executable.
package guard
