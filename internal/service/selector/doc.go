// Package selector picks one release asset by a suffix filter and extracts the
// release version from the chosen asset's filename.
package selector
