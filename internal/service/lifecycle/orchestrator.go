package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/service/backend"
	"github.com/oshokin/ghpm/internal/service/selector"
)

// Prober detects installed versions.
type Prober interface {
	Probe(ctx context.Context, command string, re *regexp.Regexp) (string, error)
}

// Catalog fetches release metadata.
type Catalog interface {
	FetchLatestRelease(ctx context.Context, owner, repo string) (*program.Release, error)
}

// Backend converges local package state.
type Backend interface {
	Install(ctx context.Context, descriptor *program.Descriptor, path string) (backend.Result, error)
	Remove(ctx context.Context, descriptor *program.Descriptor, name string) (backend.Result, error)
}

// Downloader stores release artifacts locally.
type Downloader interface {
	Download(ctx context.Context, asset *program.Asset, dir string) (string, error)
}

// Options wires the orchestrator collaborators.
type Options struct {
	Prober     Prober
	Catalog    Catalog
	Backend    Backend
	Downloader Downloader
	// Reporter receives every stage transition; LogReporter when nil.
	Reporter Reporter
	// Registry maps packageType to its descriptor.
	Registry map[string]*program.Descriptor
	// ScratchDir receives downloaded artifacts.
	ScratchDir string
}

// Outcome is the terminal state of one program.
type Outcome struct {
	Program   string
	Operation program.Operation
	// Stage is StageDone, StageSkipped or StageFailed.
	Stage     Stage
	Installed string
	Latest    string
	// UpToDate is set when nothing had to be converged.
	UpToDate     bool
	FallbackUsed bool
	Message      string
	Err          error
}

// Orchestrator runs the per-program state machine.
type Orchestrator struct {
	prober     Prober
	catalog    Catalog
	backend    Backend
	downloader Downloader
	reporter   Reporter
	registry   map[string]*program.Descriptor
	scratchDir string
}

// New creates an Orchestrator.
func New(opts *Options) *Orchestrator {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = LogReporter{}
	}

	return &Orchestrator{
		prober:     opts.Prober,
		catalog:    opts.Catalog,
		backend:    opts.Backend,
		downloader: opts.Downloader,
		reporter:   reporter,
		registry:   opts.Registry,
		scratchDir: opts.ScratchDir,
	}
}

// Run processes specs sequentially and returns one Outcome per spec, in order.
func (o *Orchestrator) Run(ctx context.Context, operation program.Operation, specs []*program.Spec) []Outcome {
	ctx = logger.WithName(ctx, "lifecycle")
	outcomes := make([]Outcome, 0, len(specs))

	for _, spec := range specs {
		outcomes = append(outcomes, o.Process(ctx, operation, spec))
	}

	return outcomes
}

// Process drives a single spec to a terminal stage.
func (o *Orchestrator) Process(ctx context.Context, operation program.Operation, spec *program.Spec) Outcome {
	t := &tracker{
		ctx:      logger.WithKV(ctx, "program", spec.PackageName),
		reporter: o.reporter,
		outcome: Outcome{
			Program:   spec.PackageName,
			Operation: operation,
		},
	}

	if err := ctx.Err(); err != nil {
		return t.fail(program.KindInterrupted, "Run interrupted", err)
	}

	t.emit(StageResolving, "Resolving backend", "")

	descriptor, ok := o.registry[spec.PackageType]
	if !ok {
		return t.skip(program.KindConfig, "No backend for package type",
			fmt.Errorf("%q: %w", spec.PackageType, program.ErrUnknownPackageType))
	}

	switch operation {
	case program.OperationRemove:
		return o.remove(t, descriptor, spec)
	case program.OperationInstall, program.OperationUpdate:
		return o.converge(t, descriptor, spec, operation)
	default:
		return t.skip(program.KindConfig, "Unsupported operation",
			fmt.Errorf("%q: %w", operation, program.ErrInvalidSpec))
	}
}

func (o *Orchestrator) remove(t *tracker, descriptor *program.Descriptor, spec *program.Spec) Outcome {
	t.emit(StageConverging, "Removing package", "")

	result, err := o.backend.Remove(t.ctx, descriptor, spec.PackageName)
	t.outcome.FallbackUsed = result.FallbackUsed

	if err != nil {
		return t.fail(program.KindBackend, "Removal failed", err)
	}

	return t.done("Removed")
}

func (o *Orchestrator) converge(
	t *tracker,
	descriptor *program.Descriptor,
	spec *program.Spec,
	operation program.Operation,
) Outcome {
	installed, err := o.prober.Probe(t.ctx, spec.VersionCommand, spec.VersionRegex)

	switch {
	case err == nil:
		t.outcome.Installed = installed
		t.emit(StageVersionChecked, "Installed version detected", "")
	case errors.Is(err, program.ErrNotInstalled) && operation == program.OperationInstall:
		t.emit(StageVersionChecked, "Not installed, proceeding with install", "")
	case errors.Is(err, program.ErrNotInstalled):
		return t.skip(program.KindProbe, "Not installed, nothing to update", err)
	default:
		return t.skip(program.KindProbe, "Installed version undetectable", err)
	}

	release, err := o.catalog.FetchLatestRelease(t.ctx, spec.Owner, spec.Repository)
	if err != nil {
		return t.skip(program.KindCatalog, "No release found", err)
	}

	asset, ok := selector.SelectAsset(release.Assets, spec.AssetFilter)
	if !ok {
		return t.skip(program.KindSelection, "No matching release asset found",
			fmt.Errorf("%s filter %q: %w", spec.Slug(), spec.AssetFilter, program.ErrNoMatchingAsset))
	}

	latest, ok := selector.ExtractVersion(asset.Name, spec.AssetVersionRegex)
	if !ok {
		return t.skip(program.KindSelection, "Version not extractable from asset",
			fmt.Errorf("%q: %w", asset.Name, program.ErrVersionUnextractable))
	}

	t.outcome.Latest = latest
	t.tag = release.TagName
	t.asset = asset.Name
	t.emit(StageAssetSelected, "Release asset selected", "")

	if program.IsUpToDate(installed, latest) {
		t.outcome.UpToDate = true

		return t.done("Already up to date")
	}

	t.emit(StageConverging, "Downloading artifact", "")

	path, err := o.downloader.Download(t.ctx, asset, o.scratchDir)
	if err != nil {
		return t.fail(program.KindTransfer, "Download failed", err)
	}

	defer func() {
		if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			logger.WarnKV(t.ctx, "Artifact cleanup failed", "path", path, "error", removeErr)
		}
	}()

	t.emit(StageConverging, "Installing artifact", path)

	result, err := o.backend.Install(t.ctx, descriptor, path)
	t.outcome.FallbackUsed = result.FallbackUsed

	if err != nil {
		return t.fail(program.KindBackend, "Install failed", err)
	}

	if installed == "" {
		return t.done("Installed")
	}

	return t.done("Updated")
}

// tracker accumulates one program's outcome and emits its transitions.
type tracker struct {
	ctx      context.Context //nolint:containedctx // Scoped to a single Process call.
	reporter Reporter
	outcome  Outcome
	tag      string
	asset    string
}

func (t *tracker) emit(stage Stage, message, detail string) {
	if detail != "" {
		message = message + ": " + detail
	}

	t.reporter.Report(t.ctx, Event{
		Program:   t.outcome.Program,
		Operation: t.outcome.Operation,
		Stage:     stage,
		Message:   message,
		Installed: t.outcome.Installed,
		Latest:    t.outcome.Latest,
		Tag:       t.tag,
		Asset:     t.asset,
		Err:       t.outcome.Err,
	})
}

func (t *tracker) finish(stage Stage, message string) Outcome {
	t.outcome.Stage = stage
	t.outcome.Message = message
	t.emit(stage, message, "")

	return t.outcome
}

func (t *tracker) done(message string) Outcome {
	return t.finish(StageDone, message)
}

func (t *tracker) skip(kind program.Kind, message string, err error) Outcome {
	t.outcome.Err = program.NewError(kind, t.outcome.Program, err)

	return t.finish(StageSkipped, message)
}

func (t *tracker) fail(kind program.Kind, message string, err error) Outcome {
	t.outcome.Err = program.NewError(kind, t.outcome.Program, err)

	return t.finish(StageFailed, message)
}

// Rejected turns a configuration error into a skipped Outcome and reports it.
func Rejected(ctx context.Context, reporter Reporter, operation program.Operation, err error) Outcome {
	name := "<invalid entry>"

	var typed *program.Error
	if errors.As(err, &typed) && typed.Program != "" {
		name = typed.Program
	}

	if reporter == nil {
		reporter = LogReporter{}
	}

	t := &tracker{
		ctx:      ctx,
		reporter: reporter,
		outcome:  Outcome{Program: name, Operation: operation, Err: err},
	}

	return t.finish(StageSkipped, "Invalid program entry")
}

// SoleFailure reports whether a run of exactly one program ended in StageFailed.
func SoleFailure(outcomes []Outcome) bool {
	return len(outcomes) == 1 && outcomes[0].Stage == StageFailed
}
