package patterns

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// List is an ordered collection of patterns evaluated gitignore-style:
// every pattern is tried and the last one that matches decides, so a
// later '!' pattern can undo an earlier match.
type List struct {
	patterns []*Pattern
	logger   *zap.Logger
}

// NewList returns an empty List. A nil logger disables debug output.
func NewList(logger *zap.Logger) *List {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List{logger: logger}
}

// CompileLines compiles lines in order and appends them to the list. The
// first invalid pattern aborts and leaves the list unchanged.
func (l *List) CompileLines(lines ...string) error {
	compiled := make([]*Pattern, 0, len(lines))
	for i, line := range lines {
		p, err := Compile(line, len(l.patterns)+i+1)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		compiled = append(compiled, p)
		l.logger.Debug("Compiled pattern",
			zap.Int("index", p.Index),
			zap.String("pattern", p.Line),
			zap.Bool("negate", p.Negate))
	}
	l.patterns = append(l.patterns, compiled...)
	return nil
}

// CompileFile reads one pattern per line from path. A missing file is not
// an error and adds nothing.
func (l *List) CompileFile(path string) error {
	lines, err := LoadIgnoreFile(path)
	if err != nil {
		return err
	}
	if lines == nil {
		l.logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", path))
		return nil
	}

	before := len(l.patterns)
	if err := l.CompileLines(lines...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	l.logger.Debug("Compiled patterns from file",
		zap.String("filePath", path),
		zap.Int("patternCount", len(l.patterns)-before))
	return nil
}

// LoadIgnoreFile returns the pattern lines of path with blanks and '#'
// comments removed. A missing file yields nil and no error.
func LoadIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}

	lines := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan ignore file %s: %w", path, err)
	}
	return lines, nil
}

// Len returns the number of compiled patterns.
func (l *List) Len() int {
	return len(l.patterns)
}

// MatchesPath reports whether rel is matched by the list.
func (l *List) MatchesPath(rel string) bool {
	matched, _ := l.MatchesPathWithPattern(rel)
	return matched
}

// MatchesPathWithPattern also returns the pattern that decided the result,
// or nil when no pattern matched.
func (l *List) MatchesPathWithPattern(rel string) (bool, *Pattern) {
	matched := false
	var decided *Pattern

	for _, p := range l.patterns {
		if p.Match(rel) {
			matched = !p.Negate
			decided = p
		}
	}
	return matched, decided
}
