// Package common holds helpers shared by several services.
//
// It provides the subprocess Executor used to run version and package-manager
// commands as explicit argument lists (never through a shell) and detection
// of the current system actor, which decides whether commands need elevation.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
