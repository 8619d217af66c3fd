package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys. They double as flag names and, upper-cased with the
// GHPM_ prefix, as environment variable names.
const (
	KeyConfig      = "config"
	KeyLogLevel    = "log-level"
	KeyRegistry    = "registry"
	KeyAPIURL      = "api-url"
	KeyScratchDir  = "scratch-dir"
	KeyElevate     = "elevate"
	KeyHTTPTimeout = "http-timeout"
	KeyOSRelease   = "os-release"
)

const (
	// DefaultProgramsFilename is the program list read from the working directory.
	DefaultProgramsFilename = "repos.json"
	// DefaultAPIURL is the public GitHub REST API.
	DefaultAPIURL = "https://api.github.com"
	// DefaultElevate prefixes package-manager commands for non-root users.
	DefaultElevate = "sudo"
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	envPrefix = "GHPM"
)

var errSettingsIsDirectory = errors.New("settings path is a directory")

// Settings are the runtime options of one ghpm invocation.
type Settings struct {
	// Programs is the program list path.
	Programs string
	LogLevel string
	// Registry is an optional user registry merged over the built-in one.
	Registry string
	APIURL   string
	// ScratchDir is the parent of the per-run download directory; OS temp dir when empty.
	ScratchDir string
	// Elevate prefixes package-manager commands; empty disables elevation.
	Elevate string
	// HTTPTimeout bounds each HTTP request; zero keeps the transport defaults.
	HTTPTimeout time.Duration
	// OSRelease is the os-release file used for package type detection.
	OSRelease string
}

// DefaultSettingsPath returns $XDG_CONFIG_HOME/ghpm/settings.yaml (~/.config on Linux).
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config directory: %w", err)
	}

	return filepath.Join(dir, "ghpm", "settings.yaml"), nil
}

// NewViper builds the settings layers below the command-line flags.
// A missing or empty settings file is not an error.
func NewViper(settingsPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if err := mergeSettingsFile(v, settingsPath); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyConfig, DefaultProgramsFilename)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyRegistry, "")
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyScratchDir, "")
	v.SetDefault(KeyElevate, DefaultElevate)
	v.SetDefault(KeyHTTPTimeout, time.Duration(0))
	v.SetDefault(KeyOSRelease, "")
}

func mergeSettingsFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s: %w", path, errSettingsIsDirectory)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err = v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// BindFlags makes every setting flag present in flags override the lower layers.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{
		KeyConfig, KeyLogLevel, KeyRegistry, KeyAPIURL,
		KeyScratchDir, KeyElevate, KeyHTTPTimeout, KeyOSRelease,
	} {
		flag := flags.Lookup(key)
		if flag == nil {
			continue
		}

		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %q: %w", key, err)
		}
	}

	return nil
}

// Decode reads the resolved settings.
func Decode(v *viper.Viper) *Settings {
	return &Settings{
		Programs:    strings.TrimSpace(v.GetString(KeyConfig)),
		LogLevel:    strings.TrimSpace(v.GetString(KeyLogLevel)),
		Registry:    strings.TrimSpace(v.GetString(KeyRegistry)),
		APIURL:      strings.TrimSpace(v.GetString(KeyAPIURL)),
		ScratchDir:  strings.TrimSpace(v.GetString(KeyScratchDir)),
		Elevate:     strings.TrimSpace(v.GetString(KeyElevate)),
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
		OSRelease:   strings.TrimSpace(v.GetString(KeyOSRelease)),
	}
}
