package cleanup

import (
	"os"
	"path/filepath"
	"strings"

	"filetamer/pkg/config"
	"filetamer/pkg/errors"
	"filetamer/pkg/fsops"
	"filetamer/pkg/report"

	"go.uber.org/zap"
)

// Archiver bundles files into a single archive.
type Archiver struct {
	policy     config.Cleanup
	sourceRoot string
	op         fsops.Operator
	logger     *zap.Logger
}

// BuildArchive writes files into the archive described by policy. The
// build is all-or-nothing: any failure before the archive is committed
// returns an ARCHIVE_BUILD error and leaves no partial archive behind.
// Removing originals happens only after the commit; those failures are
// recorded in the batch and do not fail the build.
func BuildArchive(files []string, sourceRoot string, policy config.Cleanup, op fsops.Operator, logger *zap.Logger) (*report.Batch, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Archiver{policy: policy, sourceRoot: sourceRoot, op: op, logger: logger}
	return a.Build(files)
}

// Build writes files into the archive, or in Simulated mode only logs the
// archive and every entry it would contain.
func (a *Archiver) Build(files []string) (*report.Batch, error) {
	batch := report.NewBatch("archive")

	dest, err := filepath.Abs(a.policy.ArchivePath())
	if err != nil {
		return batch, errors.Wrap(err, errors.ErrArchiveBuild, "failed to resolve archive destination")
	}
	logger := a.logger.With(zap.String("archive", dest), zap.String("format", string(a.policy.ArchiveFormat)))

	if a.op.Mode() == fsops.Simulated {
		a.simulate(files, dest, batch, logger)
		return batch, nil
	}

	logger.Info("Creating archive", zap.Int("fileCount", len(files)), zap.Int("compressionLevel", a.policy.CompressionLevel))
	if err := a.op.MkdirAll(filepath.Dir(dest)); err != nil {
		return batch, errors.Wrapf(err, errors.ErrArchiveBuild, "failed to create directory for %s", dest)
	}

	added, err := a.write(files, dest, batch, logger)
	if err != nil {
		return batch, err
	}
	logger.Info("Archive written", zap.Int("entries", len(added)))

	for _, file := range added {
		if a.policy.KeepOriginals {
			batch.Succeed(file, dest)
			continue
		}
		if err := Remove(file, a.op); err != nil {
			logger.Error("Failed to remove archived original", zap.String("filePath", file), zap.Error(err))
			batch.Fail(file, dest, err)
			continue
		}
		batch.Succeed(file, dest)
	}
	return batch, nil
}

// write streams every file into a temporary sibling of dest and renames it
// into place once the writer is finalized. It returns the files that made
// it into the archive.
func (a *Archiver) write(files []string, dest string, batch *report.Batch, logger *zap.Logger) (added []string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveBuild, "failed to create temporary archive next to %s", dest)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w, err := NewArchiveWriter(a.policy.ArchiveFormat, tmp, a.policy.CompressionLevel)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveBuild, "failed to open archive writer")
	}

	for _, file := range files {
		if file == dest {
			batch.Skip(file, "archive destination")
			continue
		}
		name := a.entryName(file)
		if err := w.Add(file, name); err != nil {
			logger.Error("Failed to add file to archive", zap.String("filePath", file), zap.Error(err))
			addErr := errors.Newf(errors.ErrArchiveBuild, "failed to add %s", file).WithDetail("filePath", file)
			addErr.Wrapped = err
			return nil, addErr
		}
		logger.Debug("Added file to archive", zap.String("filePath", file), zap.String("entry", name))
		added = append(added, file)
	}

	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveBuild, "failed to finalize archive")
	}
	if err := tmp.Sync(); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveBuild, "failed to sync archive")
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveBuild, "failed to close archive")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveBuild, "failed to set archive permissions")
	}
	if _, err := os.Stat(dest); err == nil {
		logger.Warn("Replacing existing archive")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveBuild, "failed to move archive into place at %s", dest)
	}
	committed = true
	return added, nil
}

func (a *Archiver) simulate(files []string, dest string, batch *report.Batch, logger *zap.Logger) {
	logger.Info("Would create archive", zap.Int("fileCount", len(files)), zap.Bool("dryRun", true))
	for _, file := range files {
		if file == dest {
			batch.Skip(file, "archive destination")
			continue
		}
		logger.Info("Would add file to archive",
			zap.String("filePath", file),
			zap.String("entry", a.entryName(file)),
			zap.Bool("dryRun", true))
		if !a.policy.KeepOriginals {
			if err := Remove(file, a.op); err != nil {
				logger.Error("Failed to remove archived original", zap.String("filePath", file), zap.Error(err))
				batch.Fail(file, dest, err)
				continue
			}
		}
		batch.Succeed(file, dest)
	}
}

// entryName is the base name for zip, and the slash-separated path below
// the source root for tar formats. Files outside the root fall back to
// their base name.
func (a *Archiver) entryName(file string) string {
	if a.policy.ArchiveFormat == config.FormatZip || a.sourceRoot == "" {
		return filepath.Base(file)
	}
	rel, err := filepath.Rel(a.sourceRoot, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}
