package logging

// file: internal/logging/slog.go

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level mirrors slog levels so callers do not import log/slog directly.
type Level = slog.Level

// Supported levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// levelVar is shared by every handler created through InitLogging so SetLevel
// takes effect on already-issued loggers.
var levelVar = new(slog.LevelVar)

// SlogLogger adapts *slog.Logger to the Logger interface.
type SlogLogger struct {
	l   *slog.Logger
	ctx context.Context
}

var _ Logger = (*SlogLogger)(nil)

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l, ctx: context.Background()}
}

// Debug implements Logger.
func (s *SlogLogger) Debug(msg string, args ...any) { s.l.DebugContext(s.ctx, msg, args...) }

// Info implements Logger.
func (s *SlogLogger) Info(msg string, args ...any) { s.l.InfoContext(s.ctx, msg, args...) }

// Warn implements Logger.
func (s *SlogLogger) Warn(msg string, args ...any) { s.l.WarnContext(s.ctx, msg, args...) }

// Error implements Logger.
func (s *SlogLogger) Error(msg string, args ...any) { s.l.ErrorContext(s.ctx, msg, args...) }

// WithContext implements Logger.
func (s *SlogLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SlogLogger{l: s.l, ctx: ctx}
}

// WithField implements Logger.
func (s *SlogLogger) WithField(key string, value any) Logger {
	return &SlogLogger{l: s.l.With(key, value), ctx: s.ctx}
}

// InitLogging installs a JSON slog logger writing to w as the default logger.
func InitLogging(level Level, w io.Writer) {
	initWithHandler(level, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// SetupDefaultLogger installs a stderr logger at the named level. Format "text"
// selects the human-readable handler, anything else JSON. Stdout is left alone
// because the stdio transport owns it.
func SetupDefaultLogger(level string, format ...string) {
	lvl := ParseLevel(level)
	if len(format) > 0 && strings.EqualFold(format[0], "text") {
		initWithHandler(lvl, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
		return
	}
	initWithHandler(lvl, slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
}

func initWithHandler(level Level, h slog.Handler) {
	levelVar.Set(level)
	SetDefaultLogger(NewSlogLogger(slog.New(h)))
}

// SetLevel changes the level of loggers created by InitLogging.
func SetLevel(level Level) {
	levelVar.Set(level)
}

// IsDebugEnabled reports whether debug messages are currently emitted.
func IsDebugEnabled() bool {
	return levelVar.Level() <= LevelDebug
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
