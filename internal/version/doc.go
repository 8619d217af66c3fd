// Package version exposes build metadata for ghpm.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds.
// The repository coordinates are used by the self-update command.
package version
