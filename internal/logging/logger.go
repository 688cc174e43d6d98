// Package logging provides a small Logger interface over log/slog, so
// callers can swap handlers (text for interactive use, JSON for scripted
// or CI use) without touching call sites.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// Progress reports fraction in [0,1] for a long-running stage such as
	// GenerateFrames, at debug level, tagged with the stage name.
	Progress(stage string, fraction float64)
	With(args ...any) Logger
	WithGroup(name string) Logger
}

// SlogLogger wraps *slog.Logger to satisfy Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// New wraps an arbitrary slog.Handler.
func New(handler slog.Handler) Logger {
	return &SlogLogger{logger: slog.New(handler)}
}

// Default returns a text-handler Logger writing to stderr, for interactive
// CLI use.
func Default() Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// JSON returns a JSON-handler Logger at the given level, for scripted or
// CI invocations.
func JSON(w io.Writer, level slog.Level) Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: level}))
}

// WithJobID tags logger with a fresh job id, one per cmd/fftvis invocation.
func WithJobID(logger Logger) Logger {
	return logger.With("job_id", uuid.NewString())
}

// log is the single dispatch point the four leveled methods below share,
// so a handler change (e.g. adding a metrics hook) only needs one call site.
func (l *SlogLogger) log(level slog.Level, msg string, args ...any) {
	l.logger.Log(context.Background(), level, msg, args...)
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *SlogLogger) Progress(stage string, fraction float64) {
	l.log(slog.LevelDebug, "progress", "stage", stage, "fraction", fraction)
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func (l *SlogLogger) WithGroup(name string) Logger {
	return &SlogLogger{logger: l.logger.WithGroup(name)}
}

type loggerKey struct{}

// FromContext retrieves a Logger from ctx, or Default() if none was set.
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}
	return Default()
}

// WithContext attaches logger to ctx for FromContext to retrieve later.
func WithContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// ParseLevel converts a level name to a slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
