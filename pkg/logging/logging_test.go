package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetupWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	logger, err := Setup(Options{Level: "info", File: path, AppName: "filetamer", AppVersion: "test"})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("visible", zap.String("filePath", "a.txt"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "visible", rec["msg"])
	assert.Equal(t, "a.txt", rec["filePath"])
	assert.Equal(t, "filetamer", rec["appName"])
	assert.Equal(t, "test", rec["appVersion"])
	assert.Same(t, logger, zap.L())
}

func TestSetupDefaultFileUsesXDGState(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	path, err := DefaultLogFile("filetamer")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_STATE_HOME"), "filetamer", "filetamer.log"), path)

	logger, err := Setup(Options{AppName: "filetamer"})
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()
	assert.FileExists(t, path)
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := Setup(Options{Level: "verbose", File: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}
