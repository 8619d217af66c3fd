// Package transfer streams release artifacts to a scratch directory.
package transfer
