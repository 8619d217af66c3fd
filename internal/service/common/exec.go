//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Command is an explicit, ordered argument list: executable first.
type Command []string

var (
	// ErrEmptyCommand is returned when a command has no executable.
	ErrEmptyCommand = errors.New("command is empty")
	// ErrExecutableNotFound is returned when the executable cannot be located.
	ErrExecutableNotFound = errors.New("executable not found")
	// ErrNotExecutable is returned when the executable exists but cannot be started.
	ErrNotExecutable = errors.New("executable cannot be started")
	// ErrNonZeroExit is returned when the process exits with a non-zero status.
	ErrNonZeroExit = errors.New("command exited with non-zero status")
)

// ParseCommand splits a command string on whitespace. Quoting is not supported.
func ParseCommand(s string) Command {
	return Command(strings.Fields(s))
}

// String renders the command for logs.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// Executor runs commands.
type Executor interface {
	// Output runs cmd and returns its standard output.
	Output(ctx context.Context, cmd Command) ([]byte, error)
	// Run runs cmd attached to the process standard streams.
	Run(ctx context.Context, cmd Command) error
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// ExecOption configures ExecExecutor.
type ExecOption func(*ExecExecutor)

// WithStreams overrides the streams attached by Run.
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) ExecOption {
	return func(e *ExecExecutor) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// NewExecExecutor creates an executor attached to the process streams.
func NewExecExecutor(opts ...ExecOption) *ExecExecutor {
	e := &ExecExecutor{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Output runs cmd and captures its standard output.
func (e *ExecExecutor) Output(ctx context.Context, cmd Command) ([]byte, error) {
	if len(cmd) == 0 {
		return nil, ErrEmptyCommand
	}

	//nolint:gosec // Commands are explicit argument lists built from configuration.
	output, err := exec.CommandContext(ctx, cmd[0], cmd[1:]...).Output()
	if err != nil {
		return output, classify(cmd, err)
	}

	return output, nil
}

// Run runs cmd with the executor streams attached, so password prompts and
// package-manager progress reach the user.
func (e *ExecExecutor) Run(ctx context.Context, cmd Command) error {
	if len(cmd) == 0 {
		return ErrEmptyCommand
	}

	//nolint:gosec // Commands are explicit argument lists built from configuration.
	process := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	process.Stdin = e.stdin
	process.Stdout = e.stdout
	process.Stderr = e.stderr

	if err := process.Run(); err != nil {
		return classify(cmd, err)
	}

	return nil
}

// classify maps os/exec failures onto the package sentinels.
func classify(cmd Command, err error) error {
	var exitErr *exec.ExitError

	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%s: %w", cmd[0], ErrExecutableNotFound)
	case errors.Is(err, os.ErrPermission), errors.Is(err, syscall.ENOEXEC):
		return fmt.Errorf("%s: %w: %w", cmd[0], ErrNotExecutable, err)
	case errors.As(err, &exitErr):
		return fmt.Errorf("%s: %w (exit status %d)", cmd, ErrNonZeroExit, exitErr.ExitCode())
	default:
		return fmt.Errorf("%s: %w", cmd, err)
	}
}

// Elevate prefixes cmd with the elevation command unless the actor is already
// privileged or no elevation command is configured.
func Elevate(cmd Command, elevation Command, actor *Actor) Command {
	if len(elevation) == 0 || (actor != nil && actor.Privileged) {
		return cmd
	}

	elevated := make(Command, 0, len(elevation)+len(cmd))
	elevated = append(elevated, elevation...)

	return append(elevated, cmd...)
}
