package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/oshokin/ghpm/internal/config"
	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/platform"
	"github.com/oshokin/ghpm/internal/report"
	"github.com/oshokin/ghpm/internal/service/backend"
	"github.com/oshokin/ghpm/internal/service/catalog"
	"github.com/oshokin/ghpm/internal/service/common"
	"github.com/oshokin/ghpm/internal/service/guard"
	"github.com/oshokin/ghpm/internal/service/lifecycle"
	"github.com/oshokin/ghpm/internal/service/probe"
	"github.com/oshokin/ghpm/internal/service/transfer"
)

var (
	// ErrProgramFailed is returned when the only selected program ended in a failure.
	ErrProgramFailed = errors.New("program operation failed")

	errSettingsNotInitialised = errors.New("settings are not initialized")
	errUnknownPrograms        = errors.New("not configured")
)

// Checker refuses to start when another instance is running.
type Checker interface {
	Check() error
}

// Options are inputs accepted by the manager entry point.
type Options struct {
	Operation program.Operation
	Settings  *config.Settings
	// Packages restricts the run to these package names; empty means all.
	Packages []string
	// Output receives the summary table; os.Stdout when nil.
	Output io.Writer
	// Executor runs version probes and package-manager commands; os/exec when nil.
	Executor common.Executor
	// Guard is consulted before converging; a process-table guard when nil.
	Guard Checker
	// Reporter receives lifecycle events; lifecycle.LogReporter when nil.
	Reporter lifecycle.Reporter
}

// runner holds everything one invocation needs.
type runner struct {
	opts       *Options
	specs      []*program.Spec
	rejected   []error
	registry   config.Registry
	scratchDir string
}

// Run executes the requested operation for every selected program.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithKV(logger.WithName(ctx, "ghpm"), "operation", string(opts.Operation))

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.cleanup(ctx)

	return r.run(ctx)
}

// newRunner loads configuration and prepares the scratch directory.
// Any error here is fatal for the whole run.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	if opts.Settings == nil {
		return nil, errSettingsNotInitialised
	}

	checker := opts.Guard
	if checker == nil {
		checker = guard.New()
	}

	if err := checker.Check(); err != nil {
		return nil, err
	}

	registry, err := config.LoadRegistry(opts.Settings.Registry)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Backend registry loaded", "package_types", registry.PackageTypes())

	packageType := platform.DetectPackageType(opts.Settings.OSRelease)
	logger.DebugKV(ctx, "Default package type", "package_type", packageType)

	programs, err := config.LoadPrograms(opts.Settings.Programs, packageType)
	if err != nil {
		return nil, err
	}

	specs, rejected, err := selectPrograms(programs, opts.Packages)
	if err != nil {
		return nil, err
	}

	r := &runner{
		opts:     opts,
		specs:    specs,
		rejected: rejected,
		registry: registry,
	}

	// Removal never downloads anything.
	if opts.Operation != program.OperationRemove {
		if r.scratchDir, err = transfer.NewScratchDir(opts.Settings.ScratchDir); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *runner) run(ctx context.Context) error {
	executor := r.opts.Executor
	if executor == nil {
		executor = common.NewExecExecutor()
	}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect the current user, elevating every command", "error", err)

		actor = new(common.Actor)
	}

	orchestrator := lifecycle.New(&lifecycle.Options{
		Prober: probe.New(executor),
		Catalog: catalog.NewClient(
			catalog.WithBaseURL(r.opts.Settings.APIURL),
			catalog.WithTimeout(r.opts.Settings.HTTPTimeout),
		),
		Backend:    backend.New(executor, common.ParseCommand(r.opts.Settings.Elevate), actor),
		Downloader: transfer.NewDownloader(transfer.WithTimeout(r.opts.Settings.HTTPTimeout)),
		Reporter:   r.opts.Reporter,
		Registry:   r.registry,
		ScratchDir: r.scratchDir,
	})

	outcomes := make([]lifecycle.Outcome, 0, len(r.rejected)+len(r.specs))
	for _, rejected := range r.rejected {
		outcomes = append(outcomes, lifecycle.Rejected(ctx, r.opts.Reporter, r.opts.Operation, rejected))
	}

	outcomes = append(outcomes, orchestrator.Run(ctx, r.opts.Operation, r.specs)...)

	if len(outcomes) == 0 {
		logger.WarnKV(ctx, "No programs configured", "config", r.opts.Settings.Programs)

		return nil
	}

	output := r.opts.Output
	if output == nil {
		output = os.Stdout
	}

	if err = report.Render(output, outcomes); err != nil {
		return err
	}

	if lifecycle.SoleFailure(outcomes) {
		return fmt.Errorf("%s: %w", outcomes[0].Program, ErrProgramFailed)
	}

	return nil
}

// cleanup removes the scratch directory.
func (r *runner) cleanup(ctx context.Context) {
	if r.scratchDir == "" {
		return
	}

	if err := os.RemoveAll(r.scratchDir); err != nil {
		logger.WarnKV(ctx, "Unable to remove scratch directory", "path", r.scratchDir, "error", err)
	}
}

// selectPrograms keeps the specs named in packages, or all of them when
// packages is empty. Naming an unconfigured package is an error.
func selectPrograms(programs *config.Programs, packages []string) ([]*program.Spec, []error, error) {
	if len(packages) == 0 {
		return programs.Specs, programs.Rejected, nil
	}

	specs := make([]*program.Spec, 0, len(packages))
	found := make(map[string]struct{}, len(packages))

	for _, spec := range programs.Specs {
		if slices.Contains(packages, spec.PackageName) {
			specs = append(specs, spec)
			found[spec.PackageName] = struct{}{}
		}
	}

	var missing []string

	for _, name := range packages {
		if _, ok := found[name]; !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s: %w", strings.Join(missing, ", "), errUnknownPrograms)
	}

	// Invalid entries cannot be matched by name, so a filtered run omits them.
	return specs, nil, nil
}
