package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filetamer/pkg/version"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with isolated XDG directories and a log
// file under the test's temp dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-file", filepath.Join(t.TempDir(), "test.log"), "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestListCommand(t *testing.T) {
	src := t.TempDir()
	a := writeFile(t, filepath.Join(src, "a.txt"), strings.Repeat("a", 5*1024))
	writeFile(t, filepath.Join(src, "b.log"), strings.Repeat("b", 2*1024))
	cfg := writeFile(t, filepath.Join(t.TempDir(), "c.yaml"), "filters:\n  include_patterns: [\"*.txt\"]\n")

	out, err := execute(t, "list", src, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, a+"\n", out)

	out, err = execute(t, "list", src, "--config", cfg, "--long")
	require.NoError(t, err)
	assert.Contains(t, out, "5.1 kB")
	assert.Contains(t, out, a)

	out, err = execute(t, "list", src, "--tree")
	require.NoError(t, err)
	assert.Contains(t, out, "├── a.txt\n")
	assert.Contains(t, out, "└── b.log\n")
}

func TestListCommandMissingConfigFails(t *testing.T) {
	_, err := execute(t, "list", t.TempDir(), "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRunCommandDryRun(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	a := writeFile(t, filepath.Join(src, "a.txt"), "a")

	out, err := execute(t, "run", src, dst, "--dry-run", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "[dry run] transfer: 1 ok, 0 skipped, 0 failed")
	assert.Contains(t, out, filepath.Join(dst, "a.txt"))
	assert.FileExists(t, a)
	assert.NoFileExists(t, filepath.Join(dst, "a.txt"))
}

func TestRunCommandMovesFiles(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "sub", "dir", "c.txt"), "new")
	writeFile(t, filepath.Join(dst, "c.txt"), "old")
	cfg := writeFile(t, filepath.Join(t.TempDir(), "c.toml"), "[transfer]\ncopy_instead_of_move = true\npreserve_directory_structure = false\n")

	out, err := execute(t, "run", src, dst, "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "transfer: 1 ok")

	data, err := os.ReadFile(filepath.Join(dst, "c_copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.FileExists(t, filepath.Join(src, "sub", "dir", "c.txt"))
}

func TestRunCommandRequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "run", t.TempDir())
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"conflict_suffix": "_copy"`)

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "include_patterns:")

	_, err = execute(t, "config", "show", "--format", "ini")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "filetamer version")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "chatty", "version")
	assert.Error(t, err)
}
