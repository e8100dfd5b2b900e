// Package logger holds the process-wide zap logger. The dashboard owns the
// terminal, so logs go to a file.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Config selects where and how much to log.
type Config struct {
	Level string // debug, info, warn, error
	File  string // empty = stderr
	JSON  bool   // JSON encoding instead of console
}

// Init builds the global logger.
func Init(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return fmt.Errorf("logger: level %q: %w", cfg.Level, err)
		}
	}

	var zcfg zap.Config
	if cfg.JSON {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return fmt.Errorf("logger: mkdir: %w", err)
		}
		zcfg.OutputPaths = []string{cfg.File}
		zcfg.ErrorOutputPaths = []string{cfg.File}
	} else {
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
	}

	l, err := zcfg.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return fmt.Errorf("logger: build: %w", err)
	}
	log = l
	return nil
}

// Set replaces the global logger. nil restores the no-op logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

func Info(msg string, fields ...zapcore.Field) { log.Info(msg, fields...) }

func Debug(msg string, fields ...zapcore.Field) { log.Debug(msg, fields...) }

func Warn(msg string, fields ...zapcore.Field) { log.Warn(msg, fields...) }

// Error logs msg with err attached when non-nil.
func Error(msg string, err error, fields ...zapcore.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	log.Error(msg, fields...)
}

// Sync flushes buffered entries.
func Sync() error {
	return log.Sync()
}
