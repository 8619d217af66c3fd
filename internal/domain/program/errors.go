package program

import (
	"errors"
	"fmt"
)

// Kind classifies where in the lifecycle an error originated.
type Kind string

const (
	// KindConfig marks missing or malformed configuration.
	KindConfig Kind = "config"
	// KindProbe marks installed-version detection failures.
	KindProbe Kind = "probe"
	// KindCatalog marks remote release metadata failures.
	KindCatalog Kind = "catalog"
	// KindSelection marks asset selection and version extraction failures.
	KindSelection Kind = "selection"
	// KindBackend marks package-manager command failures.
	KindBackend Kind = "backend"
	// KindTransfer marks artifact download failures.
	KindTransfer Kind = "transfer"
	// KindInterrupted marks programs not processed because the run was cancelled.
	KindInterrupted Kind = "interrupted"
)

var (
	// ErrInvalidSpec is returned for a configuration entry failing validation.
	ErrInvalidSpec = errors.New("invalid program specification")
	// ErrUnknownPackageType is returned when no backend descriptor exists for a packageType.
	ErrUnknownPackageType = errors.New("unknown package type")
	// ErrNotInstalled is returned when the version command is missing or exits non-zero.
	ErrNotInstalled = errors.New("program is not installed")
	// ErrPatternMismatch is returned when no version can be extracted from command output.
	ErrPatternMismatch = errors.New("version pattern did not match")
	// ErrReleaseUnavailable is returned when the latest release cannot be fetched.
	ErrReleaseUnavailable = errors.New("latest release unavailable")
	// ErrNoMatchingAsset is returned when no release asset matches the filter.
	ErrNoMatchingAsset = errors.New("no matching release asset found")
	// ErrVersionUnextractable is returned when no version can be extracted from an asset name.
	ErrVersionUnextractable = errors.New("version not extractable from asset name")
	// ErrCommandFailed is returned when a package-manager command and its fallbacks fail.
	ErrCommandFailed = errors.New("package manager command failed")
	// ErrDownloadFailed is returned when an artifact cannot be downloaded.
	ErrDownloadFailed = errors.New("artifact download failed")
)

// Error attributes a failure to one program and one lifecycle kind.
type Error struct {
	Kind    Kind   // Where the failure happened
	Program string // Package name or entry reference
	Err     error  // Underlying error
}

// NewError wraps err with a kind and the program it belongs to.
func NewError(kind Kind, programName string, err error) *Error {
	return &Error{
		Kind:    kind,
		Program: programName,
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e.Program != "" {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Program, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind, true
	}

	return "", false
}
