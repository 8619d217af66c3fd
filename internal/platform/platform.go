package platform

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OSReleasePath is the freedesktop os-release file.
const OSReleasePath = "/etc/os-release"

// Package types understood by the built-in registry.
const (
	PackageTypeDeb    = "deb"
	PackageTypeRPM    = "rpm"
	PackageTypePacman = "pkg.tar.zst"
	PackageTypeAPK    = "apk"
)

// DefaultPackageType is used when the distribution is not recognized.
const DefaultPackageType = PackageTypeDeb

// families maps os-release IDs to package types.
//
//nolint:gochecknoglobals // Read-only lookup table.
var families = map[string]string{
	"debian":      PackageTypeDeb,
	"ubuntu":      PackageTypeDeb,
	"linuxmint":   PackageTypeDeb,
	"pop":         PackageTypeDeb,
	"raspbian":    PackageTypeDeb,
	"fedora":      PackageTypeRPM,
	"rhel":        PackageTypeRPM,
	"centos":      PackageTypeRPM,
	"rocky":       PackageTypeRPM,
	"almalinux":   PackageTypeRPM,
	"opensuse":    PackageTypeRPM,
	"suse":        PackageTypeRPM,
	"sles":        PackageTypeRPM,
	"arch":        PackageTypePacman,
	"manjaro":     PackageTypePacman,
	"endeavouros": PackageTypePacman,
	"alpine":      PackageTypeAPK,
}

// Distribution is the subset of os-release ghpm cares about.
type Distribution struct {
	ID     string
	IDLike []string
}

// PackageType returns the package type of the distribution, checking ID
// before ID_LIKE, and DefaultPackageType when nothing matches.
func (d *Distribution) PackageType() string {
	for _, id := range append([]string{d.ID}, d.IDLike...) {
		if packageType, ok := families[id]; ok {
			return packageType
		}

		// opensuse-tumbleweed, opensuse-leap and friends.
		if prefix, _, found := strings.Cut(id, "-"); found {
			if packageType, ok := families[prefix]; ok {
				return packageType
			}
		}
	}

	return DefaultPackageType
}

// ParseOSRelease reads ID and ID_LIKE from os-release contents.
func ParseOSRelease(data []byte) *Distribution {
	distribution := new(Distribution)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found || strings.HasPrefix(key, "#") {
			continue
		}

		value = strings.ToLower(strings.Trim(strings.TrimSpace(value), `"'`))

		switch key {
		case "ID":
			distribution.ID = value
		case "ID_LIKE":
			distribution.IDLike = strings.Fields(value)
		}
	}

	return distribution
}

// Detect reads the os-release file at path (OSReleasePath when empty).
func Detect(path string) (*Distribution, error) {
	if path == "" {
		path = OSReleasePath
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return ParseOSRelease(data), nil
}

// DetectPackageType returns the host package type, DefaultPackageType when
// the os-release file is unreadable.
func DetectPackageType(path string) string {
	distribution, err := Detect(path)
	if err != nil {
		return DefaultPackageType
	}

	return distribution.PackageType()
}
