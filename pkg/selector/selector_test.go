package selector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"filetamer/pkg/config"
	"filetamer/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, root, rel string, size int) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func rules(include, exclude []string) config.Filters {
	return config.Filters{IncludePatterns: include, ExcludePatterns: exclude, IgnoreFile: config.DefaultIgnoreFile}
}

func TestScanIncludeOnly(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "a.txt", 1)
	writeFile(t, root, "b.log", 1)

	res, err := Scan(root, rules([]string{"*.txt"}, nil), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{a}, res.Files)
	assert.Empty(t, res.Warnings)
}

func TestScanWalkOrderAndDepth(t *testing.T) {
	root := t.TempDir()
	b := writeFile(t, root, "b.txt", 1)
	deep := writeFile(t, root, "a/x/deep.txt", 1)
	a := writeFile(t, root, "a/a.txt", 1)

	res, err := Scan(root, rules([]string{"**/*"}, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a, deep, b}, res.Files)
	for _, f := range res.Files {
		assert.True(t, filepath.IsAbs(f))
	}
}

func TestScanExcludeDominates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", 1)
	writeFile(t, root, "sub/b.txt", 1)

	res, err := Scan(root, rules([]string{"**/*"}, []string{"**/*"}), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Files)

	res, err = Scan(root, rules([]string{"*.txt"}, []string{"sub/"}), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.txt")}, res.Files)
}

func TestScanIgnoreFile(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "keep.txt", 1)
	writeFile(t, root, "drop.tmp", 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".tamerignore"), []byte("# scratch\n*.tmp\n"), 0644))

	res, err := Scan(root, rules(nil, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, res.Files)
}

func TestScanSizePredicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small", 10)
	mid := writeFile(t, root, "mid", 100)
	writeFile(t, root, "large", 1000)

	minSize, maxSize := config.ByteSize(100), config.ByteSize(100)
	r := rules(nil, nil)
	r.MinSize = &minSize
	r.MaxSize = &maxSize

	res, err := Scan(root, r, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{mid}, res.Files)
}

func TestScanOlderThan(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	old := writeFile(t, root, "old.txt", 1)
	edge := writeFile(t, root, "edge.txt", 1)
	fresh := writeFile(t, root, "fresh.txt", 1)
	require.NoError(t, os.Chtimes(old, now, now.Add(-48*time.Hour)))
	require.NoError(t, os.Chtimes(edge, now, now.Add(-24*time.Hour)))
	require.NoError(t, os.Chtimes(fresh, now, now.Add(-time.Hour)))

	day := config.Duration(24 * time.Hour)
	r := rules(nil, nil)
	r.OlderThan = &day

	s, err := New(r, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	res, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{old}, res.Files)
}

func TestScanSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := writeFile(t, outside, "target.txt", 1)
	writeFile(t, outside, "dir/inner.txt", 1)

	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "dir"), filepath.Join(root, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "missing"), filepath.Join(root, "broken.txt")))

	res, err := Scan(root, rules(nil, nil), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "link.txt")}, res.Files)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.IsErrorCode(res.Warnings[0], errors.ErrTraversal))
}

func TestScanUnreadableDirectoryIsWarning(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	a := writeFile(t, root, "a.txt", 1)
	locked := filepath.Join(root, "locked")
	writeFile(t, root, "locked/hidden.txt", 1)
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	res, err := Scan(root, rules(nil, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, res.Files)
	assert.Len(t, res.Warnings, 1)
}

func TestScanRootErrors(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "f", 1)

	_, err := Scan(filepath.Join(root, "missing"), rules(nil, nil), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTraversal))

	_, err = Scan(file, rules(nil, nil), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTraversal))
}

func TestNewRejectsBadPatterns(t *testing.T) {
	_, err := New(rules([]string{"[bad"}, nil), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPattern))
}

func TestRenderTree(t *testing.T) {
	root := filepath.FromSlash("/src")
	files := []string{
		filepath.FromSlash("/src/z.txt"),
		filepath.FromSlash("/src/docs/b.md"),
		filepath.FromSlash("/src/docs/a.md"),
		filepath.FromSlash("/src/A.txt"),
	}

	want := filepath.FromSlash("/src") + "/\n" +
		"├── docs/\n" +
		"│   ├── a.md\n" +
		"│   └── b.md\n" +
		"├── A.txt\n" +
		"└── z.txt\n"
	assert.Equal(t, want, RenderTree(root, files))
}
