package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/service/selector"
	"github.com/oshokin/ghpm/internal/version"
)

// DefaultFileMode is applied to the replaced binary.
const DefaultFileMode os.FileMode = 0o755

var errNoCatalog = errors.New("catalog and downloader are required")

// Catalog fetches release metadata.
type Catalog interface {
	FetchLatestRelease(ctx context.Context, owner, repo string) (*program.Release, error)
}

// Downloader stores release artifacts locally.
type Downloader interface {
	Download(ctx context.Context, asset *program.Asset, dir string) (string, error)
}

// Options configures a self-update run. Zero fields take the running binary's values.
type Options struct {
	Catalog    Catalog
	Downloader Downloader
	ScratchDir string
	// TargetPath is the binary to replace; os.Executable when empty.
	TargetPath     string
	CurrentVersion string
	Owner          string
	Repository     string
	GOOS           string
	GOARCH         string
	// CheckOnly reports the latest version without replacing anything.
	CheckOnly bool
}

// Result describes what a self-update run found and did.
type Result struct {
	Current string
	Latest  string
	Asset   string
	Updated bool
}

// UpToDate reports whether the running version is the latest release.
func (r *Result) UpToDate() bool {
	return program.IsUpToDate(r.Current, r.Latest)
}

// AssetFilter returns the filter matching the ghpm binary for goos/goarch.
func AssetFilter(goos, goarch string) string {
	return program.Wildcard + "_" + goos + "_" + goarch
}

// Run checks the latest release and replaces the target binary when it differs.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "self-update")

	if opts.Catalog == nil || opts.Downloader == nil {
		return nil, errNoCatalog
	}

	settings := withDefaults(opts)

	release, err := settings.Catalog.FetchLatestRelease(ctx, settings.Owner, settings.Repository)
	if err != nil {
		return nil, program.NewError(program.KindCatalog, settings.Repository, err)
	}

	result := &Result{
		Current: strings.TrimPrefix(settings.CurrentVersion, "v"),
		Latest:  strings.TrimPrefix(strings.TrimSpace(release.TagName), "v"),
	}

	if result.UpToDate() {
		logger.InfoKV(ctx, "ghpm is up to date", "version", result.Current)

		return result, nil
	}

	filter := AssetFilter(settings.GOOS, settings.GOARCH)

	asset, ok := selector.SelectAsset(release.Assets, filter)
	if !ok {
		return result, program.NewError(program.KindSelection, settings.Repository,
			fmt.Errorf("filter %q: %w", filter, program.ErrNoMatchingAsset))
	}

	result.Asset = asset.Name

	if settings.CheckOnly {
		logger.InfoKV(ctx, "Update available", "current", result.Current, "latest", result.Latest)

		return result, nil
	}

	if err = apply(ctx, &settings, asset); err != nil {
		return result, err
	}

	result.Updated = true

	logger.InfoKV(ctx, "ghpm updated", "from", result.Current, "to", result.Latest)

	return result, nil
}

func apply(ctx context.Context, settings *Options, asset *program.Asset) error {
	updateOptions := goupdate.Options{
		TargetPath: settings.TargetPath,
		TargetMode: DefaultFileMode,
	}

	if err := updateOptions.CheckPermissions(); err != nil {
		return fmt.Errorf("cannot replace %s: %w", settings.TargetPath, err)
	}

	path, err := settings.Downloader.Download(ctx, asset, settings.ScratchDir)
	if err != nil {
		return program.NewError(program.KindTransfer, settings.Repository, err)
	}

	defer func() {
		_ = os.Remove(path)
	}()

	binary, err := os.Open(path) //nolint:gosec // Path is inside the run's scratch directory.
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = binary.Close()
	}()

	logger.InfoKV(ctx, "Applying update", "target", settings.TargetPath, "asset", asset.Name)

	if err = goupdate.Apply(binary, updateOptions); err != nil {
		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			return fmt.Errorf("apply update: %w (rollback failed: %w)", err, rollbackErr)
		}

		return fmt.Errorf("apply update: %w", err)
	}

	return nil
}

func withDefaults(opts *Options) Options {
	settings := *opts

	if settings.TargetPath == "" {
		if executable, err := os.Executable(); err == nil {
			settings.TargetPath = executable
		}
	}

	if settings.CurrentVersion == "" {
		settings.CurrentVersion = version.Short()
	}

	if settings.Owner == "" {
		settings.Owner = version.RepositoryOwner
	}

	if settings.Repository == "" {
		settings.Repository = version.RepositoryName
	}

	if settings.GOOS == "" {
		settings.GOOS = runtime.GOOS
	}

	if settings.GOARCH == "" {
		settings.GOARCH = runtime.GOARCH
	}

	return settings
}
