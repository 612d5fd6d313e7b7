// Package logging builds the zap loggers used across echomap. Interactive
// runs log to a file inside the state directory so the terminal stays owned
// by the UI; one-shot CLI runs log to stderr. Every subsystem gets a named
// child logger so log lines can be filtered by category.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Subsystem categories. Named loggers use these so a grep over the log file
// isolates one component.
const (
	CategoryAPI      = "api"
	CategoryStore    = "store"
	CategoryIdentity = "identity"
	CategorySession  = "session"
	CategoryCapture  = "capture"
	CategoryUI       = "ui"
)

// ParseLevel maps a config level string onto a zap level. Unknown strings
// fall back to info.
func ParseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewFileLogger creates a logger writing JSON lines to path, creating parent
// directories as needed. Used by the interactive UI.
func NewFileLogger(path string, level zapcore.Level) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(f),
		level,
	)
	return zap.New(core), nil
}

// NewStderrLogger creates a console logger for non-interactive subcommands.
func NewStderrLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return logger, nil
}

// For returns the named child logger for a subsystem category.
func For(logger *zap.Logger, category string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(category)
}
