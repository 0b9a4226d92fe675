package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCounts(t *testing.T) {
	b := NewBatch("transfer")
	b.Succeed("/src/a", "/dst/a")
	b.Skip("/src/b", "outside source root")
	b.Fail("/src/c", "/dst/c", errors.New("boom"))
	b.Succeed("/src/d", "")

	assert.Equal(t, 2, b.Count(Success))
	assert.Equal(t, 1, b.Count(Skipped))
	assert.Equal(t, 1, b.Count(Failed))
	assert.True(t, b.HasFailures())

	failures := b.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "/src/c", failures[0].Path)
	assert.Len(t, b.Fields(), 4)

	assert.False(t, NewBatch("cleanup").HasFailures())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failed", Failed.String())
}

func TestPrinter(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	b := NewBatch("transfer")
	b.Succeed("/src/a", "/dst/a")
	b.Skip("/src/b", "no cleanup action")
	b.Fail("/src/c", "", errors.New("permission denied"))

	var quiet bytes.Buffer
	NewPrinter(&quiet, false).Print(b, false)
	assert.Equal(t, "transfer: 1 ok, 1 skipped, 1 failed\n  ✗ /src/c: permission denied\n", quiet.String())

	var verbose bytes.Buffer
	NewPrinter(&verbose, true).Print(b, true)
	assert.Equal(t,
		"[dry run] transfer: 1 ok, 1 skipped, 1 failed\n"+
			"  ✓ /src/a → /dst/a\n"+
			"  - /src/b (no cleanup action)\n"+
			"  ✗ /src/c: permission denied\n",
		verbose.String())
}
