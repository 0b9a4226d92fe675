package patterns

import (
	"filetamer/pkg/errors"

	"go.uber.org/zap"
)

// FilterSet pairs an include list with an exclude list. A path is selected
// when it is included and not excluded; exclusion always wins.
type FilterSet struct {
	include *List
	exclude *List
	logger  *zap.Logger
}

// NewFilterSet compiles both lists. An include list that compiles to no
// patterns would select nothing and is rejected.
func NewFilterSet(include, exclude []string, logger *zap.Logger) (*FilterSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fs := &FilterSet{
		include: NewList(logger.With(zap.String("list", "include"))),
		exclude: NewList(logger.With(zap.String("list", "exclude"))),
		logger:  logger,
	}
	if err := fs.include.CompileLines(include...); err != nil {
		return nil, err
	}
	if fs.include.Len() == 0 {
		return nil, errors.New(errors.ErrPattern, "include pattern set must not be empty")
	}
	if err := fs.exclude.CompileLines(exclude...); err != nil {
		return nil, err
	}
	return fs, nil
}

// Included reports whether rel matches the include list.
func (fs *FilterSet) Included(rel string) bool {
	return fs.include.MatchesPath(rel)
}

// Excluded reports whether rel matches the exclude list.
func (fs *FilterSet) Excluded(rel string) bool {
	return fs.exclude.MatchesPath(rel)
}

// Matches reports whether rel is selected.
func (fs *FilterSet) Matches(rel string) bool {
	included, inc := fs.include.MatchesPathWithPattern(rel)
	if !included {
		return false
	}
	excluded, exc := fs.exclude.MatchesPathWithPattern(rel)
	if excluded {
		fs.logger.Debug("Path excluded",
			zap.String("path", rel),
			zap.String("include", inc.Line),
			zap.String("exclude", exc.Line))
		return false
	}
	return true
}
