package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/ghpm/internal/domain/program"
)

// schemaURL identifies the embedded program entry schema.
const schemaURL = "https://github.com/oshokin/ghpm/program.schema.json"

//go:embed schema.json
var programSchema []byte

var (
	// ErrProgramsUnreadable is returned when the program list cannot be read or parsed at all.
	ErrProgramsUnreadable = errors.New("program list unreadable")

	errNotSequence = errors.New("program list must be a sequence of entries")

	//nolint:gochecknoglobals // Compiled once per process.
	compiledSchema = sync.OnceValues(compileSchema)
)

// programEntry mirrors one record of the program list.
type programEntry struct {
	Owner             string `yaml:"owner"`
	Repo              string `yaml:"repo"`
	PackageName       string `yaml:"package_name"`
	VersionCommand    string `yaml:"version_command"`
	VersionRegex      string `yaml:"version_result_regular_expression"`
	AssetPattern      string `yaml:"asset_pattern"`
	AssetVersionRegex string `yaml:"asset_version_regex"`
	PackageType       string `yaml:"package_type"`
}

// Programs is the loaded program list.
type Programs struct {
	// Specs are the valid entries in file order.
	Specs []*program.Spec
	// Rejected holds one *program.Error per invalid entry.
	Rejected []error
}

// LoadPrograms reads the program list at path (DefaultProgramsFilename when empty).
// defaultPackageType fills entries without package_type.
func LoadPrograms(path, defaultPackageType string) (*Programs, error) {
	if path == "" {
		path = DefaultProgramsFilename
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProgramsUnreadable, err)
	}

	programs, err := ParsePrograms(data, defaultPackageType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return programs, nil
}

// ParsePrograms decodes a YAML or JSON sequence of program entries. Only a
// document that cannot be parsed at all is an error; invalid entries are
// collected in Programs.Rejected.
func ParsePrograms(data []byte, defaultPackageType string) (*Programs, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProgramsUnreadable, err)
	}

	programs := new(Programs)

	// An empty file decodes to a zero node.
	if len(document.Content) == 0 {
		return programs, nil
	}

	root := document.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %w", ErrProgramsUnreadable, errNotSequence)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	for i, node := range root.Content {
		spec, err := decodeEntry(schema, node, defaultPackageType)
		if err != nil {
			programs.Rejected = append(programs.Rejected,
				program.NewError(program.KindConfig, entryName(i, node), err))

			continue
		}

		programs.Specs = append(programs.Specs, spec)
	}

	return programs, nil
}

func decodeEntry(schema *jsonschema.Schema, node *yaml.Node, defaultPackageType string) (*program.Spec, error) {
	if err := validateEntry(schema, node); err != nil {
		return nil, err
	}

	var entry programEntry
	if err := node.Decode(&entry); err != nil {
		return nil, fmt.Errorf("%w: %w", program.ErrInvalidSpec, err)
	}

	return entry.toSpec(defaultPackageType)
}

// validateEntry checks the entry against the schema through its JSON form.
func validateEntry(schema *jsonschema.Schema, node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %w", program.ErrInvalidSpec, err)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: entry is not a JSON object: %w", program.ErrInvalidSpec, err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%w: %w", program.ErrInvalidSpec, err)
	}

	if err = schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %w", program.ErrInvalidSpec, err)
	}

	return nil
}

func (e *programEntry) toSpec(defaultPackageType string) (*program.Spec, error) {
	spec := &program.Spec{
		Owner:          strings.TrimSpace(e.Owner),
		Repository:     strings.TrimSpace(e.Repo),
		PackageName:    strings.TrimSpace(e.PackageName),
		VersionCommand: strings.TrimSpace(e.VersionCommand),
		PackageType:    strings.TrimSpace(e.PackageType),
		AssetFilter:    strings.TrimSpace(e.AssetPattern),
	}

	if spec.VersionCommand == "" {
		spec.VersionCommand = program.DefaultVersionCommand(spec.PackageName)
	}

	if spec.PackageType == "" {
		spec.PackageType = defaultPackageType
	}

	if spec.AssetFilter == "" {
		spec.AssetFilter = program.DefaultAssetFilter(spec.PackageType)
	}

	var err error

	if spec.VersionRegex, err = compileOptional("version_result_regular_expression", e.VersionRegex); err != nil {
		return nil, err
	}

	if spec.AssetVersionRegex, err = compileOptional("asset_version_regex", e.AssetVersionRegex); err != nil {
		return nil, err
	}

	return spec, nil
}

// compileOptional compiles a non-blank pattern. The capture-group count is
// checked at match time, where a mismatch skips the program.
func compileOptional(field, pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil //nolint:nilnil // Absent pattern selects the positional fallback.
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", program.ErrInvalidSpec, field, err)
	}

	return re, nil
}

// entryName names an entry in errors: its package name when it has one.
func entryName(index int, node *yaml.Node) string {
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "package_name" {
				if name := strings.TrimSpace(node.Content[i+1].Value); name != "" {
					return fmt.Sprintf("entry %d (%s)", index+1, name)
				}
			}
		}
	}

	return fmt.Sprintf("entry %d", index+1)
}

func compileSchema() (*jsonschema.Schema, error) {
	document, err := jsonschema.UnmarshalJSON(bytes.NewReader(programSchema))
	if err != nil {
		return nil, fmt.Errorf("decode program schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource(schemaURL, document); err != nil {
		return nil, fmt.Errorf("add program schema: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile program schema: %w", err)
	}

	return schema, nil
}
