// Package pipeline runs Selection, Cleanup and Transfer in order over one
// source tree.
package pipeline

import (
	"path/filepath"

	"filetamer/pkg/cleanup"
	"filetamer/pkg/config"
	"filetamer/pkg/errors"
	"filetamer/pkg/fsops"
	"filetamer/pkg/report"
	"filetamer/pkg/runlock"
	"filetamer/pkg/selector"
	"filetamer/pkg/transfer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures one run.
type Options struct {
	Source string
	Target string
	Config *config.Config
	Mode   fsops.Mode
	Logger *zap.Logger
}

// Summary reports what a run did. Cleanup and Transfer are nil when the
// run stopped before reaching them.
type Summary struct {
	RunID    string
	Mode     fsops.Mode
	Selected []string
	Warnings []error
	Cleanup  *report.Batch
	Transfer *report.Batch
}

// HasFailures reports whether any file failed in any stage.
func (s *Summary) HasFailures() bool {
	return (s.Cleanup != nil && s.Cleanup.HasFailures()) ||
		(s.Transfer != nil && s.Transfer.HasFailures())
}

// Run executes the pipeline. In Real mode it holds the run lock for the
// target for the whole run. A returned error means the run stopped early;
// the summary still describes the stages that ran.
func Run(opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	summary := &Summary{RunID: uuid.New().String(), Mode: opts.Mode}
	logger = logger.With(zap.String("runID", summary.RunID), zap.Stringer("mode", opts.Mode))

	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return summary, errors.Wrapf(err, errors.ErrTraversal, "failed to resolve source %s", opts.Source)
	}
	target, err := filepath.Abs(opts.Target)
	if err != nil {
		return summary, errors.Wrapf(err, errors.ErrFileIO, "failed to resolve target %s", opts.Target)
	}
	logger.Info("Starting run", zap.String("source", source), zap.String("target", target))

	if opts.Mode == fsops.Real {
		lock, err := runlock.Acquire(target)
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
		logger.Debug("Acquired run lock", zap.String("lockFile", lock.Path()))
	}

	result, err := selector.Scan(source, cfg.Filters, logger)
	if err != nil {
		return summary, err
	}
	summary.Selected = result.Files
	summary.Warnings = result.Warnings
	logger.Info("Selection finished", zap.Int("selected", len(result.Files)), zap.Int("warnings", len(result.Warnings)))

	op := fsops.New(opts.Mode, logger)

	survivors, batch, err := cleanup.NewCleaner(source, logger).Clean(result.Files, cfg.Cleanup, op)
	summary.Cleanup = batch
	if err != nil {
		logger.Error("Cleanup aborted, skipping transfer", zap.Error(err))
		return summary, err
	}
	logger.Info("Cleanup finished", batch.Fields()...)

	summary.Transfer = transfer.Transfer(survivors, source, target, cfg.Transfer, op, logger)
	logger.Info("Run finished", zap.Bool("failures", summary.HasFailures()))
	return summary, nil
}

// List runs Selection only.
func List(source string, cfg *config.Config, logger *zap.Logger) (*selector.Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	return selector.Scan(source, cfg.Filters, logger)
}
