package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oshokin/ghpm/internal/config"
	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/service/manager"
	"github.com/oshokin/ghpm/internal/version"
)

var (
	errNoOperation     = errors.New("no operation selected: use --install, --update or --remove")
	errUnknownLogLevel = errors.New("unknown log level")
)

var (
	// settingsPath overrides the user settings file.
	settingsPath string
	// install, update and remove select the operation; at most one may be set.
	install bool
	update  bool
	remove  bool

	// settings resolved by PersistentPreRunE for the running command.
	settings *config.Settings

	// runManager executes the selected operation.
	runManager = manager.Run

	// rootCmd installs, updates or removes the configured programs.
	rootCmd = &cobra.Command{
		Use:   "ghpm [flags] [package...]",
		Short: "GitHub based package manager",
		Long: "ghpm installs, updates and removes programs published as GitHub release assets,\n" +
			"driving the host package manager. Programs are listed in repos.json; positional\n" +
			"arguments restrict the run to the named packages.",
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
		RunE: func(cmd *cobra.Command, args []string) error {
			operation, err := selectedOperation(install, update, remove)
			if err != nil {
				_ = cmd.Usage()

				return err
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &manager.Options{
				Operation: operation,
				Settings:  settings,
				Packages:  args,
				Output:    cmd.OutOrStdout(),
			}

			return runManager(ctx, options)
		},
	}
)

// Execute runs the ghpm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// selectedOperation maps the operation flags to a program.Operation.
func selectedOperation(install, update, remove bool) (program.Operation, error) {
	switch {
	case install:
		return program.OperationInstall, nil
	case update:
		return program.OperationUpdate, nil
	case remove:
		return program.OperationRemove, nil
	default:
		return "", errNoOperation
	}
}

// loadSettings layers defaults, the settings file, GHPM_* variables and flags.
func loadSettings(cmd *cobra.Command, _ []string) error {
	path := settingsPath
	if path == "" {
		if defaultPath, err := config.DefaultSettingsPath(); err == nil {
			path = defaultPath
		}
	}

	v, err := config.NewViper(path)
	if err != nil {
		return err
	}

	if err = config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	return applySettings(v)
}

func applySettings(v *viper.Viper) error {
	resolved := config.Decode(v)

	level, ok := logger.ParseLogLevel(resolved.LogLevel)
	if !ok {
		return fmt.Errorf("%q: %w", resolved.LogLevel, errUnknownLogLevel)
	}

	logger.SetLevel(level)

	settings = resolved

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().BoolVarP(&install, "install", "i", false, "install package(s) defined in the program list")
	rootCmd.Flags().BoolVarP(&update, "update", "u", false, "update package(s) defined in the program list")
	rootCmd.Flags().BoolVarP(&remove, "remove", "r", false, "remove package(s) defined in the program list")
	rootCmd.MarkFlagsMutuallyExclusive("install", "update", "remove")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settingsPath, "settings", "", "path to the settings file (default $XDG_CONFIG_HOME/ghpm/settings.yaml)")
	flags.StringP(config.KeyConfig, "c", config.DefaultProgramsFilename, "path to the program list")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "log level: debug, info, warn or error")
	flags.String(config.KeyRegistry, "", "backend registry merged over the built-in one")
	flags.String(config.KeyAPIURL, config.DefaultAPIURL, "GitHub API root")
	flags.String(config.KeyScratchDir, "", "parent directory for downloads (default OS temp dir)")
	flags.String(config.KeyElevate, config.DefaultElevate, "command prefixed to package-manager commands; empty disables")
	flags.Duration(config.KeyHTTPTimeout, 0, "timeout for each HTTP request (0 keeps transport defaults)")
	flags.String(config.KeyOSRelease, "", "os-release file used to detect the package type")
	_ = flags.MarkHidden(config.KeyOSRelease)

	rootCmd.AddCommand(selfUpdateCmd)
}
