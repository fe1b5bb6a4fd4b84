package fsenv

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with fsenv-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger

	closer io.Closer // set for loggers that own their output file
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}

// Close closes the file behind a logger created by Env.NewLogger.
// It is a no-op for other loggers.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// LogSync logs a directory or file sync.
func (l *Logger) LogSync(path string, dir bool, err error) {
	if err != nil {
		l.Warn("sync failed",
			"path", path,
			"dir", dir,
			"error", err,
		)
	} else {
		l.Debug("sync completed",
			"path", path,
			"dir", dir,
		)
	}
}

// LogWrite logs a failed unbuffered write.
func (l *Logger) LogWrite(path string, size int, err error) {
	if err == nil {
		return
	}
	l.Warn("write failed",
		"path", path,
		"size", size,
		"error", err,
	)
}

// LogRead logs a failed read.
func (l *Logger) LogRead(path string, offset int64, size int, err error) {
	if err == nil {
		return
	}
	l.Warn("read failed",
		"path", path,
		"offset", offset,
		"size", size,
		"error", err,
	)
}

// LogLock logs a lock or unlock attempt.
func (l *Logger) LogLock(path string, lock bool, err error) {
	op := "unlock"
	if lock {
		op = "lock"
	}
	if err != nil {
		l.Warn(op+" failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Debug(op+" completed",
			"path", path,
		)
	}
}

// LogLimits logs the admission limits an Env was created with.
func (l *Logger) LogLimits(fdLimit, mmapLimit int) {
	l.Debug("resource limits",
		"read_only_fds", fdLimit,
		"mmaps", mmapLimit,
	)
}
