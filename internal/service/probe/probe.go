package probe

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/service/common"
)

// fallbackTokenIndex is the whitespace token taken when no regex is configured,
// e.g. "app 1.2.3" -> "1.2.3".
const fallbackTokenIndex = 1

// Prober runs version commands.
type Prober struct {
	executor common.Executor
}

// New creates a Prober using the given executor.
func New(executor common.Executor) *Prober {
	return &Prober{executor: executor}
}

// Probe runs command and extracts the installed version.
// A missing or unrunnable executable and a non-zero exit yield program.ErrNotInstalled;
// output without an extractable version yields program.ErrPatternMismatch.
func (p *Prober) Probe(ctx context.Context, command string, re *regexp.Regexp) (string, error) {
	cmd := common.ParseCommand(command)
	if len(cmd) == 0 {
		return "", fmt.Errorf("empty version command: %w", program.ErrNotInstalled)
	}

	logger.DebugKV(ctx, "Probing installed version", "command", cmd.String())

	output, err := p.executor.Output(ctx, cmd)
	if err != nil {
		if errors.Is(err, common.ErrExecutableNotFound) ||
			errors.Is(err, common.ErrNotExecutable) ||
			errors.Is(err, common.ErrNonZeroExit) {
			return "", fmt.Errorf("%w: %w", program.ErrNotInstalled, err)
		}

		return "", fmt.Errorf("run %q: %w", cmd.String(), err)
	}

	return Extract(strings.TrimSpace(string(output)), re)
}

// Extract pulls the version out of trimmed command output.
func Extract(output string, re *regexp.Regexp) (string, error) {
	if re != nil {
		version, ok := program.MatchVersion(re, output)
		if !ok {
			return "", fmt.Errorf("pattern %q against %q: %w", re.String(), output, program.ErrPatternMismatch)
		}

		return version, nil
	}

	fields := strings.Fields(output)
	if len(fields) <= fallbackTokenIndex {
		return "", fmt.Errorf("output %q has no version token: %w", output, program.ErrPatternMismatch)
	}

	return fields[fallbackTokenIndex], nil
}
