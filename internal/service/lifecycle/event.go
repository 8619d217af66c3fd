package lifecycle

import (
	"context"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
)

// Stage is a state of one program's lifecycle.
type Stage string

const (
	// StageResolving loads the backend descriptor.
	StageResolving Stage = "resolving"
	// StageVersionChecked has the installed version, or knows it is absent.
	StageVersionChecked Stage = "version_checked"
	// StageAssetSelected has the release artifact and its version.
	StageAssetSelected Stage = "asset_selected"
	// StageConverging runs the download and the package manager.
	StageConverging Stage = "converging"
	// StageDone is terminal: the system matches the request.
	StageDone Stage = "done"
	// StageSkipped is terminal: a precondition did not hold.
	StageSkipped Stage = "skipped"
	// StageFailed is terminal: converging was attempted and failed.
	StageFailed Stage = "failed"
)

// Event is one stage transition of one program.
type Event struct {
	Program   string
	Operation program.Operation
	Stage     Stage
	Message   string
	// Installed is the locally detected version, empty when unknown.
	Installed string
	// Latest is the version extracted from the selected asset.
	Latest string
	// Tag is the release tag, informational only.
	Tag   string
	Asset string
	Err   error
}

// Reporter receives lifecycle events.
type Reporter interface {
	Report(ctx context.Context, event Event)
}

// LogReporter writes events to the context logger.
type LogReporter struct{}

// Report logs the event as a key-value line. Skips warn, failures are errors.
func (LogReporter) Report(ctx context.Context, event Event) {
	kvs := []any{
		"program", event.Program,
		"operation", string(event.Operation),
		"stage", string(event.Stage),
	}

	for _, field := range []struct{ key, value string }{
		{"installed", event.Installed},
		{"latest", event.Latest},
		{"tag", event.Tag},
		{"asset", event.Asset},
	} {
		if field.value != "" {
			kvs = append(kvs, field.key, field.value)
		}
	}

	if event.Err != nil {
		if kind, ok := program.KindOf(event.Err); ok {
			kvs = append(kvs, "kind", string(kind))
		}

		kvs = append(kvs, "error", event.Err)
	}

	switch event.Stage {
	case StageFailed:
		logger.ErrorKV(ctx, event.Message, kvs...)
	case StageSkipped:
		logger.WarnKV(ctx, event.Message, kvs...)
	case StageDone:
		logger.InfoKV(ctx, event.Message, kvs...)
	default:
		logger.DebugKV(ctx, event.Message, kvs...)
	}
}
