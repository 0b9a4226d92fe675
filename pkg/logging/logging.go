// Package logging builds the process logger: a human-readable console core
// on stderr teed with a JSON core appending to a log file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Logger is the global logger instance
var Logger = zap.NewNop()

// Options configures Setup.
type Options struct {
	Level      string // debug, info, warn or error
	File       string // empty selects DefaultLogFile
	AppName    string
	AppVersion string
}

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// DefaultLogFile returns $XDG_STATE_HOME/<appName>/<appName>.log, creating
// the directory if needed.
func DefaultLogFile(appName string) (string, error) {
	return xdg.StateFile(filepath.Join(appName, appName+".log"))
}

// Setup builds the logger, installs it as the zap global and stores it in
// Logger. When the log file cannot be opened the logger falls back to the
// console only and the returned logger carries a warning about it.
func Setup(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	enabler := zap.NewAtomicLevelAt(level)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.Kitchen)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), enabler),
	}

	logFile := opts.File
	var fileErr error
	if logFile == "" {
		logFile, fileErr = DefaultLogFile(opts.AppName)
	}
	if fileErr == nil {
		var f *os.File
		f, fileErr = openLogFile(logFile)
		if fileErr == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(f),
				enabler,
			).With([]zap.Field{
				zap.String("appName", opts.AppName),
				zap.String("appVersion", opts.AppVersion),
			})
			cores = append(cores, fileCore)
		}
	}

	Logger = zap.New(zapcore.NewTee(cores...))
	if level == zapcore.DebugLevel {
		Logger = Logger.WithOptions(zap.AddCaller())
	}
	zap.ReplaceGlobals(Logger)

	if fileErr != nil {
		Logger.Warn("Failed to open log file, logging to console only", zap.String("path", logFile), zap.Error(fileErr))
	}
	Logger.Debug("Logger initialized", zap.String("level", level.String()), zap.String("logFile", logFile))
	return Logger, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time.
func LogOperationStart(logger *zap.Logger, operation string) func() {
	start := time.Now()
	logger.Debug("Operation started", zap.String("operation", operation))
	return func() {
		logger.Debug("Operation completed",
			zap.String("operation", operation),
			zap.Duration("duration", time.Since(start)))
	}
}
