// logger/logger.go
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the level of logging. Higher values denote more severe log messages.
type LogLevel int

const (
	LogLevelDebug LogLevel = -1
	LogLevelInfo  LogLevel = 0
	LogLevelWarn  LogLevel = 1
	LogLevelError LogLevel = 2
	LogLevelPanic LogLevel = 4
	LogLevelFatal LogLevel = 5
)

// ParseLogLevelFromString converts a configuration string ("debug", "info", ...)
// to a strongly-typed LogLevel. Unknown strings map to LogLevelInfo.
func ParseLogLevelFromString(levelStr string) LogLevel {
	switch levelStr {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "info", "INFO":
		return LogLevelInfo
	case "warn", "warning", "WARN", "WARNING":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger interface with structured logging capabilities at various levels.
type Logger interface {
	SetLevel(level LogLevel)
	GetLogLevel() LogLevel
	With(fields ...zapcore.Field) Logger
	Debug(msg string, fields ...zapcore.Field)
	Info(msg string, fields ...zapcore.Field)
	Warn(msg string, fields ...zapcore.Field)
	Error(msg string, fields ...zapcore.Field) error
	Fatal(msg string, fields ...zapcore.Field)
}

// defaultLogger implements Logger on top of Uber's zap library. The logLevel
// field controls the verbosity of the logs this logger produces.
type defaultLogger struct {
	logger   *zap.Logger
	logLevel LogLevel
}

func (d *defaultLogger) SetLevel(level LogLevel) {
	d.logLevel = level
}

func (d *defaultLogger) GetLogLevel() LogLevel {
	return d.logLevel
}

// With adds contextual key-value pairs to the logger, returning a new logger
// instance carrying the context. Useful for per-tenant loggers.
func (d *defaultLogger) With(fields ...zapcore.Field) Logger {
	return &defaultLogger{
		logger:   d.logger.With(fields...),
		logLevel: d.logLevel,
	}
}

func (d *defaultLogger) Debug(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelDebug {
		d.logger.Debug(msg, fields...)
	}
}

func (d *defaultLogger) Info(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelInfo {
		d.logger.Info(msg, fields...)
	}
}

func (d *defaultLogger) Warn(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelWarn {
		d.logger.Warn(msg, fields...)
	}
}

// Error logs a message at the Error level and returns it as an error so call
// sites can log and propagate in one statement.
func (d *defaultLogger) Error(msg string, fields ...zapcore.Field) error {
	if d.logLevel <= LogLevelError {
		d.logger.Error(msg, fields...)
	}
	return fmt.Errorf("%s", msg)
}

func (d *defaultLogger) Fatal(msg string, fields ...zapcore.Field) {
	d.logger.Fatal(msg, fields...)
}
