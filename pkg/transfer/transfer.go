// Package transfer relocates files into a target tree, either mirroring
// their position under the source root or flattening them, and never
// overwrites an existing destination.
package transfer

import (
	"path/filepath"
	"strings"

	"filetamer/pkg/config"
	"filetamer/pkg/errors"
	"filetamer/pkg/fsops"
	"filetamer/pkg/report"

	"go.uber.org/zap"
)

// Decision is where one file goes.
type Decision struct {
	Source    string
	Relative  string // path under the target root before conflict resolution
	Candidate string
	Final     string
}

// Transferer applies a transfer policy with one Resolver per invocation.
type Transferer struct {
	policy   config.Transfer
	op       fsops.Operator
	resolver *Resolver
	logger   *zap.Logger
}

// New returns a Transferer. The Operator decides whether anything is
// actually written.
func New(policy config.Transfer, op fsops.Operator, logger *zap.Logger) *Transferer {
	if logger == nil {
		logger = zap.NewNop()
	}
	suffix := policy.ConflictSuffix
	if suffix == "" {
		suffix = config.DefaultConflictSuffix
	}
	return &Transferer{
		policy:   policy,
		op:       op,
		resolver: NewResolver(suffix, logger),
		logger:   logger,
	}
}

// Transfer relocates files from sourceRoot into targetRoot. Every failure
// is recorded against its file and the batch continues.
func Transfer(files []string, sourceRoot, targetRoot string, policy config.Transfer, op fsops.Operator, logger *zap.Logger) *report.Batch {
	return New(policy, op, logger).Transfer(files, sourceRoot, targetRoot)
}

// Transfer places each file under targetRoot, resolving name conflicts
// against the disk and against destinations already chosen in this batch.
func (t *Transferer) Transfer(files []string, sourceRoot, targetRoot string) *report.Batch {
	batch := report.NewBatch("transfer")
	verb := "move"
	if t.policy.CopyInsteadOfMove {
		verb = "copy"
	}
	t.logger.Info("Transferring files",
		zap.Int("fileCount", len(files)),
		zap.String("target", targetRoot),
		zap.String("action", verb),
		zap.Bool("preserveStructure", t.policy.PreserveDirectoryStructure))

	for _, file := range files {
		d, err := t.Decide(file, sourceRoot, targetRoot)
		if err != nil {
			t.logger.Error("Failed to choose destination", zap.String("filePath", file), zap.Error(err))
			batch.Fail(file, "", err)
			continue
		}
		if d.Final != d.Candidate {
			t.logger.Info("Destination exists, using alternate name",
				zap.String("candidate", d.Candidate),
				zap.String("destination", d.Final))
		}

		if err := t.apply(d); err != nil {
			t.logger.Error("Failed to transfer file",
				zap.String("filePath", file),
				zap.String("destination", d.Final),
				zap.Error(err))
			batch.Fail(file, d.Final, err)
			continue
		}
		batch.Succeed(file, d.Final)
	}

	t.logger.Info("Transfer finished", batch.Fields()...)
	return batch
}

// Decide computes the destination of file and claims it.
func (t *Transferer) Decide(file, sourceRoot, targetRoot string) (Decision, error) {
	rel := filepath.Base(file)
	if t.policy.PreserveDirectoryStructure {
		if r, ok := relativeTo(sourceRoot, file); ok {
			rel = r
		}
	}

	d := Decision{
		Source:    file,
		Relative:  rel,
		Candidate: filepath.Join(targetRoot, rel),
	}
	final, err := t.resolver.Resolve(d.Candidate)
	if err != nil {
		return d, err
	}
	d.Final = final
	t.resolver.Claim(final)
	return d, nil
}

func (t *Transferer) apply(d Decision) error {
	if err := t.op.MkdirAll(filepath.Dir(d.Final)); err != nil {
		return errors.Wrapf(err, errors.ErrFileIO, "failed to create directory %s", filepath.Dir(d.Final))
	}
	if t.policy.CopyInsteadOfMove {
		if err := t.op.Copy(d.Source, d.Final); err != nil {
			return errors.Wrap(err, errors.ErrFileIO, "copy failed")
		}
		return nil
	}
	if err := t.op.Rename(d.Source, d.Final); err != nil {
		return errors.Wrap(err, errors.ErrFileIO, "move failed")
	}
	return nil
}

// relativeTo returns file relative to root when file lies under root.
func relativeTo(root, file string) (string, bool) {
	if root == "" {
		return "", false
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return rel, true
}
