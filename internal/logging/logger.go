// Package logging is the key/value logging facade used across camptools.
// Packages ask for a component logger with GetLogger; the CLI decides where
// the lines go by installing a default with SetupDefaultLogger.
package logging

// file: internal/logging/logger.go

import (
	"context"
	"sync/atomic"
)

// Logger takes a message followed by alternating key/value pairs. Messages
// are short sentences; values carry the ids and counts.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithContext binds ctx to every line the returned logger writes.
	WithContext(ctx context.Context) Logger

	// WithField returns a logger that adds key=value to every line.
	WithField(key string, value any) Logger
}

// NoopLogger discards everything. Constructors that accept a nil Logger
// fall back to it.
type NoopLogger struct{}

// Debug discards the line.
func (l *NoopLogger) Debug(string, ...any) {}

// Info discards the line.
func (l *NoopLogger) Info(string, ...any) {}

// Warn discards the line.
func (l *NoopLogger) Warn(string, ...any) {}

// Error discards the line.
func (l *NoopLogger) Error(string, ...any) {}

// WithContext returns l.
func (l *NoopLogger) WithContext(context.Context) Logger { return l }

// WithField returns l.
func (l *NoopLogger) WithField(string, any) Logger { return l }

var noop Logger = &NoopLogger{}

// GetNoopLogger returns the shared discarding logger.
func GetNoopLogger() Logger {
	return noop
}

type holder struct{ Logger }

var defaultLogger atomic.Pointer[holder]

func init() {
	defaultLogger.Store(&holder{noop})
}

// SetDefaultLogger replaces the logger GetLogger derives from. A nil logger
// is ignored.
func SetDefaultLogger(logger Logger) {
	if logger != nil {
		defaultLogger.Store(&holder{logger})
	}
}

// GetLogger returns the default logger tagged with component=name. Loggers
// obtained before SetDefaultLogger keep writing where they were pointed.
func GetLogger(name string) Logger {
	return defaultLogger.Load().WithField("component", name)
}
