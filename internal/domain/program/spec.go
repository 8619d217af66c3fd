package program

import (
	"regexp"
	"strings"
)

// Operation is the lifecycle action requested on the command line.
type Operation string

const (
	// OperationInstall installs the latest artifact, tolerating a missing local installation.
	OperationInstall Operation = "install"
	// OperationUpdate converges an existing installation to the latest artifact.
	OperationUpdate Operation = "update"
	// OperationRemove removes the installed package.
	OperationRemove Operation = "remove"
)

// Wildcard is the leading marker stripped from asset filters.
const Wildcard = "*"

// Spec is one configured target program plus its version-detection and
// asset-selection rules. Specs are read-only once loaded.
type Spec struct {
	// Owner is the hosting-platform owner of the upstream repository.
	Owner string
	// Repository is the upstream repository name.
	Repository string
	// PackageName is the locally installed package name and the removal target.
	PackageName string
	// VersionCommand is a whitespace-tokenized command printing the installed version.
	VersionCommand string
	// VersionRegex extracts the installed version from the command output (one capture group).
	VersionRegex *regexp.Regexp
	// AssetVersionRegex extracts the release version from the asset filename (one capture group).
	AssetVersionRegex *regexp.Regexp
	// PackageType selects the backend descriptor.
	PackageType string
	// AssetFilter is a glob-like suffix pattern such as "*.deb".
	AssetFilter string
}

// Slug returns "owner/repository".
func (s *Spec) Slug() string {
	return s.Owner + "/" + s.Repository
}

// DefaultVersionCommand returns the version command used when none is configured.
func DefaultVersionCommand(packageName string) string {
	return packageName + " --version"
}

// DefaultAssetFilter returns the asset filter used when none is configured.
func DefaultAssetFilter(packageType string) string {
	return Wildcard + "." + strings.TrimPrefix(packageType, ".")
}
