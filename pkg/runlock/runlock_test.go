package runlock

import (
	"path/filepath"
	"testing"

	"filetamer/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathForIsStablePerTarget(t *testing.T) {
	dir := t.TempDir()
	a1, err := PathFor(dir)
	require.NoError(t, err)
	a2, err := PathFor(dir + string(filepath.Separator))
	require.NoError(t, err)
	b, err := PathFor(filepath.Join(dir, "other"))
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.NotContains(t, a1, dir)
}

func TestAcquireIsExclusive(t *testing.T) {
	target := t.TempDir()

	first, err := Acquire(target)
	require.NoError(t, err)

	// flock locks are per open file description, so a second handle in the
	// same process contends like another process would.
	_, err = Acquire(target)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocked))

	require.NoError(t, first.Unlock())

	second, err := Acquire(target)
	require.NoError(t, err)
	require.NoError(t, second.Unlock())
}

func TestDifferentTargetsDoNotContend(t *testing.T) {
	a, err := Acquire(t.TempDir())
	require.NoError(t, err)
	defer a.Unlock()

	b, err := Acquire(t.TempDir())
	require.NoError(t, err)
	defer b.Unlock()
}
