// Package patterns compiles shell-style glob rules and answers membership
// queries for paths relative to a scan root.
//
// Syntax follows doublestar: '*' and '?' stay within one path segment,
// '**' spans directories, and '[...]' / '{a,b}' work as in the shell.
// On top of that the gitignore conventions apply:
//
//   - a pattern without '/' matches the base name at any depth ("*.log")
//   - a pattern with '/' matches the whole relative path ("logs/**/*.gz")
//   - a leading '/' anchors a bare name to the root ("/todo.txt")
//   - a trailing '/' selects everything below a directory ("cache/")
//   - a leading '!' negates the pattern within its list
//
// Matching is case-sensitive and never sees absolute paths.
package patterns

import (
	"path"
	"path/filepath"
	"strings"

	"filetamer/pkg/errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is one compiled rule.
type Pattern struct {
	Glob     string // Glob handed to doublestar, after prefix handling.
	Line     string // Original text.
	Negate   bool   // Pattern started with '!'.
	BaseName bool   // Glob is matched against the base name only.
	Index    int    // 1-based position in the source list or file.
}

// Compile parses a single rule. Blank lines and '#' comments yield a nil
// pattern and no error.
func Compile(line string, index int) (*Pattern, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	p := &Pattern{Line: line, Index: index}
	if strings.HasPrefix(trimmed, "!") {
		p.Negate = true
		trimmed = trimmed[1:]
	}

	// "\#" and "\!" escape a literal leading character.
	if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
		trimmed = trimmed[1:]
	}

	anchored := strings.HasPrefix(trimmed, "/")
	trimmed = strings.TrimPrefix(trimmed, "/")

	if strings.HasSuffix(trimmed, "/") {
		trimmed = strings.TrimSuffix(trimmed, "/") + "/**"
		if !anchored && !strings.Contains(strings.TrimSuffix(trimmed, "/**"), "/") {
			trimmed = "**/" + trimmed
		}
	}

	if trimmed == "" {
		return nil, errors.Newf(errors.ErrPattern, "empty pattern in %q", line).WithDetail("index", index)
	}

	p.Glob = trimmed
	p.BaseName = !anchored && !strings.Contains(trimmed, "/")

	if !doublestar.ValidatePattern(p.Glob) {
		return nil, errors.Newf(errors.ErrPattern, "invalid glob pattern %q", line).WithDetail("index", index)
	}
	return p, nil
}

// Match reports whether the root-relative path rel matches the glob,
// ignoring negation.
func (p *Pattern) Match(rel string) bool {
	rel = normalizePath(rel)
	if p.BaseName {
		rel = path.Base(rel)
	}
	ok, err := doublestar.Match(p.Glob, rel)
	return err == nil && ok
}

// normalizePath converts OS-specific separators to forward slashes and
// drops a leading "./".
func normalizePath(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimPrefix(rel, "./")
}
