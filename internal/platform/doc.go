// Package platform detects the host's native package format from os-release,
// matching ID first and then each ID_LIKE entry against the known families.
package platform
