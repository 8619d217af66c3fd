package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/service/common"
)

var errNoCommand = errors.New("descriptor has no command for this action")

// Result describes how a backend action completed.
type Result struct {
	// FallbackUsed is true when the primary command failed and the fallback chain succeeded.
	FallbackUsed bool
}

// Backend runs descriptor commands through an executor.
type Backend struct {
	executor  common.Executor
	elevation common.Command
	actor     *common.Actor
}

// New creates a Backend. Commands are prefixed with elevation unless actor is privileged.
func New(executor common.Executor, elevation common.Command, actor *common.Actor) *Backend {
	return &Backend{
		executor:  executor,
		elevation: elevation,
		actor:     actor,
	}
}

// Install installs the local artifact at path.
func (b *Backend) Install(ctx context.Context, descriptor *program.Descriptor, path string) (Result, error) {
	ctx = logger.WithKV(ctx, "action", "install")

	return b.converge(ctx, descriptor.Install, descriptor.InstallFallback, path)
}

// Remove removes the package called name.
func (b *Backend) Remove(ctx context.Context, descriptor *program.Descriptor, name string) (Result, error) {
	ctx = logger.WithKV(ctx, "action", "remove")

	return b.converge(ctx, descriptor.Remove, descriptor.RemoveFallback, name)
}

func (b *Backend) converge(
	ctx context.Context,
	primary program.Template,
	fallback []program.Template,
	value string,
) (Result, error) {
	if len(primary.Expand(value)) == 0 {
		return Result{}, fmt.Errorf("%w: %w", program.ErrCommandFailed, errNoCommand)
	}

	primaryErr := b.run(ctx, primary, value)
	if primaryErr == nil {
		return Result{}, nil
	}

	if len(fallback) == 0 {
		return Result{}, fmt.Errorf("%w: %w", program.ErrCommandFailed, primaryErr)
	}

	logger.WarnKV(ctx, "Primary command failed, running fallback chain",
		"error", primaryErr,
		"steps", len(fallback))

	for i, step := range fallback {
		if err := b.run(ctx, step, value); err != nil {
			return Result{FallbackUsed: true}, fmt.Errorf("%w: fallback step %d: %w (primary: %w)",
				program.ErrCommandFailed, i+1, err, primaryErr)
		}
	}

	return Result{FallbackUsed: true}, nil
}

func (b *Backend) run(ctx context.Context, template program.Template, value string) error {
	cmd := common.Elevate(common.Command(template.Expand(value)), b.elevation, b.actor)

	logger.InfoKV(ctx, "Running command", "command", cmd.String())

	return b.executor.Run(ctx, cmd)
}
