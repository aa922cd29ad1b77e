package logger

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Logger is a slog front end over a zap core.
type Logger struct {
	*slog.Logger
	zap *zap.Logger
}

func NewLogger(level string) *Logger {
	return NewLoggerWithFormat(level, os.Getenv("LOG_FORMAT"))
}

// NewLoggerWithFormat builds a logger writing JSON to stderr, or colored
// console output when format is "console".
func NewLoggerWithFormat(level, format string) *Logger {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true

	zapLogger, err := cfg.Build()
	if err != nil {
		zapLogger = zap.NewNop()
	}

	return &Logger{
		Logger: slog.New(zapslog.NewHandler(zapLogger.Core())),
		zap:    zapLogger,
	}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	zapLogger := zap.NewNop()
	return &Logger{
		Logger: slog.New(zapslog.NewHandler(zapLogger.Core())),
		zap:    zapLogger,
	}
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		zap:    l.zap,
	}
}

func (l *Logger) Sync() error {
	return l.zap.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
