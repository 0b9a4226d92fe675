// File: pkg/selector/selector.go
package selector

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"filetamer/pkg/config"
	"filetamer/pkg/errors"
	"filetamer/pkg/patterns"

	"go.uber.org/zap"
)

// Result is the outcome of one scan. Files holds absolute paths in walk
// order; Warnings holds the traversal errors that were skipped over.
type Result struct {
	Files    []string
	Warnings []error
}

// Selector walks a source tree and keeps the regular files that pass the
// pattern set and the age and size predicates.
type Selector struct {
	rules  config.Filters
	logger *zap.Logger
	now    func() time.Time
}

// New validates the include and exclude patterns of rules up front so a bad
// glob fails before any walk starts.
func New(rules config.Filters, logger *zap.Logger) (*Selector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rules.IncludePatterns) == 0 {
		rules.IncludePatterns = []string{config.DefaultIncludePattern}
	}
	if _, err := patterns.NewFilterSet(rules.IncludePatterns, rules.ExcludePatterns, nil); err != nil {
		return nil, err
	}
	return &Selector{rules: rules, logger: logger, now: time.Now}, nil
}

// Scan is a shorthand for New followed by Selector.Scan.
func Scan(root string, rules config.Filters, logger *zap.Logger) (*Result, error) {
	s, err := New(rules, logger)
	if err != nil {
		return nil, err
	}
	return s.Scan(root)
}

// Scan walks root. The ignore file, when configured and present at root,
// extends the exclude set for this scan only and is never selected itself.
func (s *Selector) Scan(root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTraversal, "failed to resolve source root %s", root)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTraversal, "source root %s is not accessible", absRoot)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrTraversal, "source root %s is not a directory", absRoot)
	}

	filter, ignoreRel, err := s.filterFor(absRoot)
	if err != nil {
		return nil, err
	}

	// A trailing separator makes WalkDir descend into a symlinked root.
	walkRoot := absRoot
	if li, err := os.Lstat(absRoot); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		walkRoot = absRoot + string(filepath.Separator)
	}

	now := s.now()
	result := &Result{Files: []string{}}
	s.logger.Debug("Starting file selection", zap.String("root", absRoot))

	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Error accessing path during traversal", zap.String("path", path), zap.Error(err))
			result.Warnings = append(result.Warnings, errors.Wrapf(err, errors.ErrTraversal, "skipped %s", path))
			return nil
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			s.logger.Warn("Failed to compute relative path", zap.String("path", path), zap.Error(err))
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == ignoreRel {
			return nil
		}

		info, ok := s.candidateInfo(path, d, result)
		if !ok {
			return nil
		}
		if !filter.Matches(relPath) {
			return nil
		}
		if reason := s.rejectReason(info, now); reason != "" {
			s.logger.Debug("File rejected by predicate", zap.String("filePath", relPath), zap.String("reason", reason))
			return nil
		}

		result.Files = append(result.Files, filepath.Join(absRoot, filepath.FromSlash(relPath)))
		s.logger.Debug("Selected file", zap.String("filePath", relPath))
		return nil
	})
	if err != nil {
		return result, errors.Wrapf(err, errors.ErrTraversal, "failed to walk %s", absRoot)
	}

	s.logger.Debug("Completed file selection",
		zap.Int("selected", len(result.Files)),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// filterFor builds the pattern set for one scan, appending the lines of the
// root's ignore file to the exclude set. It also returns the ignore file's
// relative path ("" when none is configured).
func (s *Selector) filterFor(root string) (*patterns.FilterSet, string, error) {
	exclude := append([]string{}, s.rules.ExcludePatterns...)
	ignoreRel := ""
	if s.rules.IgnoreFile != "" {
		ignoreRel = filepath.ToSlash(s.rules.IgnoreFile)
		ignorePath := filepath.Join(root, s.rules.IgnoreFile)
		lines, err := patterns.LoadIgnoreFile(ignorePath)
		if err != nil {
			return nil, "", errors.Wrap(err, errors.ErrPattern, "failed to load ignore file")
		}
		if len(lines) > 0 {
			s.logger.Debug("Loaded ignore file", zap.String("filePath", ignorePath), zap.Int("patternCount", len(lines)))
		}
		exclude = append(exclude, lines...)
	}

	filter, err := patterns.NewFilterSet(s.rules.IncludePatterns, exclude, s.logger)
	if err != nil {
		return nil, "", err
	}
	return filter, ignoreRel, nil
}

// candidateInfo returns the file info for regular files and for symlinks
// that resolve to regular files. Everything else is skipped.
func (s *Selector) candidateInfo(path string, d fs.DirEntry, result *Result) (fs.FileInfo, bool) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warn("Skipping unresolvable symlink", zap.String("path", path), zap.Error(err))
			result.Warnings = append(result.Warnings, errors.Wrapf(err, errors.ErrTraversal, "skipped symlink %s", path))
			return nil, false
		}
		if !info.Mode().IsRegular() {
			s.logger.Debug("Skipping symlink to non-regular file", zap.String("path", path))
			return nil, false
		}
		return info, true
	}

	if !d.Type().IsRegular() {
		s.logger.Debug("Skipping special file", zap.String("path", path))
		return nil, false
	}
	info, err := d.Info()
	if err != nil {
		s.logger.Warn("Failed to get file info during traversal", zap.String("filePath", path), zap.Error(err))
		result.Warnings = append(result.Warnings, errors.Wrapf(err, errors.ErrTraversal, "skipped %s", path))
		return nil, false
	}
	return info, true
}

// rejectReason applies the age and size predicates and names the first one
// that fails, or returns "".
func (s *Selector) rejectReason(info fs.FileInfo, now time.Time) string {
	if s.rules.OlderThan != nil {
		cutoff := now.Add(-s.rules.OlderThan.Std())
		if !info.ModTime().Before(cutoff) {
			return "newer than " + s.rules.OlderThan.String()
		}
	}
	size := uint64(info.Size())
	if s.rules.MinSize != nil && size < uint64(*s.rules.MinSize) {
		return "smaller than " + s.rules.MinSize.String()
	}
	if s.rules.MaxSize != nil && size > uint64(*s.rules.MaxSize) {
		return "larger than " + s.rules.MaxSize.String()
	}
	return ""
}
