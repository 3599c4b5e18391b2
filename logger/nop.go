// logger/nop.go
package logger

import "go.uber.org/zap"

// NewNop returns a Logger that discards all output. Intended for tests.
func NewNop() Logger {
	return &defaultLogger{
		logger:   zap.NewNop(),
		logLevel: LogLevelFatal,
	}
}
