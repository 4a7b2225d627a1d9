package ekmeans

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with ekmeans-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
// A nil w writes to stderr.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
// A nil w writes to stderr.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithK adds a k (center count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogIteration logs a completed round.
func (l *Logger) LogIteration(ctx context.Context, iteration, moves int) {
	l.DebugContext(ctx, "iteration completed",
		"iteration", iteration,
		"moves", moves,
	)
}

// LogRun logs the outcome of a run.
func (l *Logger) LogRun(ctx context.Context, iterations, moves int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"iterations", iterations,
			"duration", duration,
			"error", err,
		)
		return
	}
	if moves > 0 {
		l.WarnContext(ctx, "run stopped at iteration cap",
			"iterations", iterations,
			"moves", moves,
			"duration", duration,
		)
		return
	}
	l.InfoContext(ctx, "run converged",
		"iterations", iterations,
		"duration", duration,
	)
}
