// Package probe detects the locally installed version of a program by running
// its configured version command and extracting a version string from stdout.
package probe
