// logger/loggerconfig.go
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogOutputJSON    = "json"
	LogOutputConsole = "console"
)

// BuildLogger creates and returns a new zap-backed logger instance. When
// logFilePath is non-empty the log output is duplicated to that file. The
// function panics if the logger cannot be initialized, since nothing can be
// reported without it.
func BuildLogger(logLevel LogLevel, outputFormat string, logFilePath string) Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := LogOutputJSON
	if outputFormat == LogOutputConsole {
		encoding = LogOutputConsole
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	outputPaths := []string{"stdout"}
	if logFilePath != "" {
		outputPaths = append(outputPaths, logFilePath)
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(convertToZapLevel(logLevel)),
		Development:       false,
		Encoding:          encoding,
		DisableCaller:     true,
		DisableStacktrace: true,
		EncoderConfig:     encoderCfg,
		OutputPaths:       outputPaths,
		ErrorOutputPaths:  []string{"stderr"},
	}

	return &defaultLogger{
		logger:   zap.Must(config.Build()),
		logLevel: logLevel,
	}
}

// convertToZapLevel maps the package's LogLevel to zap's level type.
func convertToZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelPanic:
		return zapcore.PanicLevel
	case LogLevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
