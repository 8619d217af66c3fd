package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/ghpm/internal/config"
	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/service/manager"
)

// TestSelectedOperation maps flags to operations and rejects an empty selection.
func TestSelectedOperation(t *testing.T) {
	t.Parallel()

	operation, err := selectedOperation(true, false, false)
	require.NoError(t, err)
	require.Equal(t, program.OperationInstall, operation)

	operation, err = selectedOperation(false, true, false)
	require.NoError(t, err)
	require.Equal(t, program.OperationUpdate, operation)

	operation, err = selectedOperation(false, false, true)
	require.NoError(t, err)
	require.Equal(t, program.OperationRemove, operation)

	_, err = selectedOperation(false, false, false)
	require.ErrorIs(t, err, errNoOperation)
}

// TestApplySettings rejects unknown log levels.
func TestApplySettings(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set(config.KeyLogLevel, "verbose")

	require.ErrorIs(t, applySettings(v), errUnknownLogLevel)
}

// TestRootCommand_AcceptsPackageArguments resolves package names to the root command
// rather than treating them as subcommands.
func TestRootCommand_AcceptsPackageArguments(t *testing.T) {
	t.Parallel()

	found, args, err := rootCmd.Find([]string{"-r", "app", "tool"})
	require.NoError(t, err)
	require.Same(t, rootCmd, found)
	require.Equal(t, []string{"-r", "app", "tool"}, args)
	require.NoError(t, found.ValidateArgs([]string{"app", "tool"}))

	found, _, err = rootCmd.Find([]string{"self-update", "--check"})
	require.NoError(t, err)
	require.Same(t, selfUpdateCmd, found)
}

// TestRootCommand_PassesPackagesToManager runs the root command and checks the
// operation and package filter handed to the manager.
func TestRootCommand_PassesPackagesToManager(t *testing.T) {
	var received *manager.Options

	previous := runManager
	runManager = func(_ context.Context, opts *manager.Options) error {
		received = opts

		return nil
	}

	t.Cleanup(func() {
		runManager = previous
		remove = false

		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--settings", filepath.Join(t.TempDir(), "settings.yaml"),
		"-r", "app", "tool",
	})

	require.NoError(t, rootCmd.Execute())
	require.NotNil(t, received)
	require.Equal(t, program.OperationRemove, received.Operation)
	require.Equal(t, []string{"app", "tool"}, received.Packages)
	require.NotNil(t, received.Settings)
	require.Same(t, &out, received.Output)
}
