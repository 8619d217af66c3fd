package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/oshokin/ghpm/internal/domain/program"
)

//go:embed registry.toml
var builtinRegistry []byte

var (
	// ErrRegistryUnreadable is returned when a registry file cannot be read or parsed.
	ErrRegistryUnreadable = errors.New("backend registry unreadable")
	// ErrInvalidDescriptor is returned for a descriptor with malformed templates.
	ErrInvalidDescriptor = errors.New("invalid backend descriptor")
)

// descriptorEntry is one [packageType] table.
type descriptorEntry struct {
	Install         string   `toml:"install"`
	Remove          string   `toml:"remove"`
	InstallFallback []string `toml:"install_fallback"`
	RemoveFallback  []string `toml:"remove_fallback"`
}

// Registry maps package types to their backend descriptors.
type Registry map[string]*program.Descriptor

// PackageTypes lists the registered package types in sorted order.
func (r Registry) PackageTypes() []string {
	types := make([]string, 0, len(r))
	for packageType := range r {
		types = append(types, packageType)
	}

	slices.Sort(types)

	return types
}

// BuiltinRegistry returns the embedded registry.
func BuiltinRegistry() (Registry, error) {
	registry, err := ParseRegistry(builtinRegistry)
	if err != nil {
		return nil, fmt.Errorf("built-in registry: %w", err)
	}

	return registry, nil
}

// LoadRegistry returns the built-in registry with the file at path merged
// over it; user descriptors replace built-in ones per package type.
// An empty path yields the built-in registry alone.
func LoadRegistry(path string) (Registry, error) {
	registry, err := BuiltinRegistry()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return registry, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistryUnreadable, err)
	}

	overrides, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for packageType, descriptor := range overrides {
		registry[packageType] = descriptor
	}

	return registry, nil
}

// ParseRegistry decodes and validates TOML registry contents.
func ParseRegistry(data []byte) (Registry, error) {
	var entries map[string]descriptorEntry

	metadata, err := toml.Decode(string(data), &entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistryUnreadable, err)
	}

	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidDescriptor, undecoded[0].String())
	}

	registry := make(Registry, len(entries))

	for packageType, entry := range entries {
		descriptor, err := entry.toDescriptor(strings.TrimSpace(packageType))
		if err != nil {
			return nil, err
		}

		registry[descriptor.PackageType] = descriptor
	}

	return registry, nil
}

func (e *descriptorEntry) toDescriptor(packageType string) (*program.Descriptor, error) {
	descriptor := &program.Descriptor{
		PackageType:     packageType,
		Install:         program.Template(strings.TrimSpace(e.Install)),
		Remove:          program.Template(strings.TrimSpace(e.Remove)),
		InstallFallback: templates(e.InstallFallback),
		RemoveFallback:  templates(e.RemoveFallback),
	}

	if packageType == "" {
		return nil, fmt.Errorf("%w: empty package type", ErrInvalidDescriptor)
	}

	for name, template := range map[string]program.Template{
		"install": descriptor.Install,
		"remove":  descriptor.Remove,
	} {
		if count := template.Placeholders(); count != 1 {
			return nil, fmt.Errorf("%w: %s.%s needs exactly one %s placeholder, has %d",
				ErrInvalidDescriptor, packageType, name, program.Placeholder, count)
		}
	}

	for _, fallback := range slices.Concat(descriptor.InstallFallback, descriptor.RemoveFallback) {
		if fallback == "" || fallback.Placeholders() > 1 {
			return nil, fmt.Errorf("%w: %s fallback %q must be non-empty with at most one %s placeholder",
				ErrInvalidDescriptor, packageType, fallback, program.Placeholder)
		}
	}

	return descriptor, nil
}

func templates(commands []string) []program.Template {
	if len(commands) == 0 {
		return nil
	}

	result := make([]program.Template, 0, len(commands))
	for _, command := range commands {
		result = append(result, program.Template(strings.TrimSpace(command)))
	}

	return result
}
