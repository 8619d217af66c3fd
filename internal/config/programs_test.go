package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ghpm/internal/domain/program"
)

// TestParsePrograms_Defaults fills version command, package type and asset filter.
func TestParsePrograms_Defaults(t *testing.T) {
	t.Parallel()

	programs, err := ParsePrograms([]byte(`[
		{"owner": "Alex313031", "repo": "thorium", "package_name": " thorium-browser "}
	]`), "deb")
	require.NoError(t, err)
	require.Empty(t, programs.Rejected)
	require.Len(t, programs.Specs, 1)

	spec := programs.Specs[0]
	require.Equal(t, "Alex313031/thorium", spec.Slug())
	require.Equal(t, "thorium-browser", spec.PackageName)
	require.Equal(t, "thorium-browser --version", spec.VersionCommand)
	require.Equal(t, "deb", spec.PackageType)
	require.Equal(t, "*.deb", spec.AssetFilter)
	require.Nil(t, spec.VersionRegex)
	require.Nil(t, spec.AssetVersionRegex)
}

// TestParsePrograms_YAML reads YAML lists with every optional key.
func TestParsePrograms_YAML(t *testing.T) {
	t.Parallel()

	programs, err := ParsePrograms([]byte(`
- owner: a
  repo: b
  package_name: app
  version_command: app -V
  version_result_regular_expression: 'app (\S+)'
  asset_pattern: "*_amd64.rpm"
  asset_version_regex: '^app-([0-9.]+)-'
  package_type: rpm
`), "deb")
	require.NoError(t, err)
	require.Len(t, programs.Specs, 1)

	spec := programs.Specs[0]
	require.Equal(t, "app -V", spec.VersionCommand)
	require.Equal(t, "rpm", spec.PackageType)
	require.Equal(t, "*_amd64.rpm", spec.AssetFilter)
	require.Equal(t, `app (\S+)`, spec.VersionRegex.String())
	require.Equal(t, `^app-([0-9.]+)-`, spec.AssetVersionRegex.String())
}

// TestParsePrograms_Rejected skips invalid entries and keeps their valid siblings.
func TestParsePrograms_Rejected(t *testing.T) {
	t.Parallel()

	programs, err := ParsePrograms([]byte(`[
		{"repo": "b", "package_name": "no-owner"},
		{"owner": "a", "repo": "b", "package_name": "ok"},
		{"owner": "  ", "repo": "b", "package_name": "blank-owner"},
		{"owner": "a", "repo": "b", "package_name": "typo", "asset_patern": "*.deb"},
		{"owner": "a", "repo": "b", "package_name": "bad-regex", "version_result_regular_expression": "("},
		"not an object"
	]`), "deb")
	require.NoError(t, err)
	require.Len(t, programs.Specs, 1)
	require.Equal(t, "ok", programs.Specs[0].PackageName)
	require.Len(t, programs.Rejected, 5)

	for _, rejected := range programs.Rejected {
		require.ErrorIs(t, rejected, program.ErrInvalidSpec)

		kind, ok := program.KindOf(rejected)
		require.True(t, ok)
		require.Equal(t, program.KindConfig, kind)
	}

	require.Contains(t, programs.Rejected[0].Error(), "entry 1 (no-owner)")
	require.Contains(t, programs.Rejected[3].Error(), "entry 5 (bad-regex)")
	require.Contains(t, programs.Rejected[3].Error(), "version_result_regular_expression")
	require.Contains(t, programs.Rejected[4].Error(), "entry 6")
}

// TestParsePrograms_Fatal fails only for unparsable documents or non-sequences.
func TestParsePrograms_Fatal(t *testing.T) {
	t.Parallel()

	_, err := ParsePrograms([]byte(`[{"owner": `), "deb")
	require.ErrorIs(t, err, ErrProgramsUnreadable)

	_, err = ParsePrograms([]byte(`{"owner": "a"}`), "deb")
	require.ErrorIs(t, err, errNotSequence)

	programs, err := ParsePrograms(nil, "deb")
	require.NoError(t, err)
	require.Empty(t, programs.Specs)
}

// TestLoadPrograms reads from disk and reports a missing file as fatal.
func TestLoadPrograms(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultProgramsFilename)
	require.NoError(t, os.WriteFile(path, []byte(`[{"owner":"a","repo":"b","package_name":"app"}]`), 0o600))

	programs, err := LoadPrograms(path, "apk")
	require.NoError(t, err)
	require.Equal(t, "*.apk", programs.Specs[0].AssetFilter)

	_, err = LoadPrograms(filepath.Join(dir, "missing.json"), "deb")
	require.ErrorIs(t, err, ErrProgramsUnreadable)
	require.ErrorIs(t, err, os.ErrNotExist)
}
