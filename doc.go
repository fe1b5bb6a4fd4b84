// Package fsenv is the operating system environment of a log-structured
// storage engine: files, advisory locks, background work and time.
//
// # Files
//
//   - SequentialFile reads a file front to back.
//   - RandomAccessFile serves positional reads. Files are memory-mapped
//     while the mapping budget lasts, then kept open while the descriptor
//     budget lasts, and otherwise reopened on every read.
//   - WritableFile appends through per-goroutine staging buffers
//     (Appender). Syncing a manifest file syncs its directory first.
//
// # Locks
//
// LockFile takes an exclusive whole-file advisory lock and also rejects a
// second lock on the same path from within the process, which the kernel
// does not.
//
// # Background work
//
// Schedule runs work items one at a time, in submission order, on a single
// worker goroutine.
//
// # Lifecycle
//
// Default returns the process-wide Env. It is never torn down, and calling
// Close on it panics. New builds independent environments:
//
//	env := fsenv.New(
//	    fsenv.WithFileSystem(vfs.NewFaultyFS(nil)),
//	    fsenv.WithLogger(fsenv.NewTextLogger(slog.LevelDebug)),
//	)
//	defer env.Close()
//
// # Errors
//
// Failures are *Error values whose Kind is one of ErrNotFound, ErrIO,
// ErrInvalidArgument, ErrAlreadyHeld or ErrNotSupported. Interrupted system
// calls are retried internally.
package fsenv
