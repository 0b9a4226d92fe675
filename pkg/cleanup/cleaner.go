// Package cleanup applies the cleanup policy to a selection: bundle the
// files into an archive, delete them, or leave them alone. Whatever
// survives is handed on to transfer.
package cleanup

import (
	"filetamer/pkg/config"
	"filetamer/pkg/fsops"
	"filetamer/pkg/report"

	"go.uber.org/zap"
)

// Cleaner dispatches a selection to the archive, delete or no-op branch.
type Cleaner struct {
	sourceRoot string
	logger     *zap.Logger
}

// NewCleaner returns a Cleaner. sourceRoot names tar entries relative to
// the scanned tree.
func NewCleaner(sourceRoot string, logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{sourceRoot: sourceRoot, logger: logger}
}

// Clean applies policy to files and returns the files left for transfer.
// In Simulated mode the survivors are those a real run would leave. A
// non-nil error means the archive could not be built; the survivors are
// then the unchanged input. Archiving with keep_originals leaves the files
// that went into the archive, never the archive itself.
func (c *Cleaner) Clean(files []string, policy config.Cleanup, op fsops.Operator) ([]string, *report.Batch, error) {
	switch policy.Active() {
	case "archive":
		if policy.Delete {
			c.logger.Warn("Both archive and delete are set; archiving takes precedence")
		}
		batch, err := BuildArchive(files, c.sourceRoot, policy, op, c.logger)
		if err != nil {
			c.logger.Error("Archive build failed", zap.Error(err))
			return append([]string{}, files...), batch, err
		}
		survivors := []string{}
		if policy.KeepOriginals {
			for _, o := range batch.Outcomes {
				if o.Status == report.Success {
					survivors = append(survivors, o.Path)
				}
			}
		}
		return survivors, batch, nil

	case "delete":
		return c.delete(files, op)

	default:
		batch := report.NewBatch("cleanup")
		for _, file := range files {
			c.logger.Info("No cleanup action", zap.String("filePath", file))
			batch.Skip(file, "no cleanup action")
		}
		return append([]string{}, files...), batch, nil
	}
}

func (c *Cleaner) delete(files []string, op fsops.Operator) ([]string, *report.Batch, error) {
	batch := report.NewBatch("delete")
	survivors := []string{}
	for _, file := range files {
		if err := Remove(file, op); err != nil {
			c.logger.Error("Failed to delete file", zap.String("filePath", file), zap.Error(err))
			batch.Fail(file, "", err)
			survivors = append(survivors, file)
			continue
		}
		if op.Mode() == fsops.Real {
			c.logger.Info("Deleted file", zap.String("filePath", file))
		}
		batch.Succeed(file, "")
	}
	return survivors, batch, nil
}
