package program

import "strings"

// Placeholder is substituted with the artifact path or the package name.
const Placeholder = "{}"

// Template is a whitespace-tokenized command containing at most one Placeholder.
type Template string

// Expand splits the template on whitespace and substitutes value into the
// placeholder token. The value always stays a single argument.
func (t Template) Expand(value string) []string {
	fields := strings.Fields(string(t))
	argv := make([]string, 0, len(fields))

	for _, field := range fields {
		argv = append(argv, strings.ReplaceAll(field, Placeholder, value))
	}

	return argv
}

// Placeholders returns how many placeholders the template carries.
func (t Template) Placeholders() int {
	return strings.Count(string(t), Placeholder)
}

// Descriptor maps one packageType to the commands converging it.
type Descriptor struct {
	// PackageType is the registry key, e.g. "deb".
	PackageType string
	// Install installs a local artifact; the placeholder receives the file path.
	Install Template
	// Remove removes an installed package; the placeholder receives the package name.
	Remove Template
	// InstallFallback runs in order when Install fails.
	InstallFallback []Template
	// RemoveFallback runs in order when Remove fails.
	RemoveFallback []Template
}
