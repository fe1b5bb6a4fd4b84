package fsenv

import (
	"errors"
	"io"
	"math"
	"os"

	"github.com/hupe1980/fsenv/vfs"
)

// SequentialFile reads a file from front to back.
// It is not safe for concurrent use.
type SequentialFile struct {
	file      vfs.File
	path      string
	skippable bool
	logger    *Logger
	metrics   MetricsCollector
	closed    bool
}

// Name returns the path the file was opened with.
func (f *SequentialFile) Name() string { return f.path }

// Read reads up to len(p) bytes from the current position.
// At end of file it returns 0, io.EOF.
func (f *SequentialFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, backendError(f.path, os.ErrClosed)
	}
	if len(p) == 0 {
		return 0, nil
	}

	for {
		n, err := f.file.Read(p)
		if err != nil && isInterrupted(err) {
			if n == 0 {
				continue
			}
			err = nil
		}
		if errors.Is(err, io.EOF) {
			if n > 0 {
				err = nil
			}
			f.metrics.RecordRead(n, 0, nil)
			return n, err
		}
		f.metrics.RecordRead(n, 0, err)
		if err != nil {
			f.logger.LogRead(f.path, -1, len(p), err)
			return n, backendError(f.path, err)
		}
		return n, nil
	}
}

// Skip advances the read position by n bytes. Skipping past the end of the
// file is not an error; subsequent reads return io.EOF.
func (f *SequentialFile) Skip(n uint64) error {
	if !f.skippable {
		return &Error{Kind: ErrNotSupported, Path: "skip " + f.path}
	}
	if f.closed {
		return backendError(f.path, os.ErrClosed)
	}
	if n > math.MaxInt64 {
		return invalidArgument("skip " + f.path)
	}
	if _, err := f.file.Seek(int64(n), io.SeekCurrent); err != nil {
		return backendError(f.path, err)
	}
	return nil
}

// Close closes the file. Calling Close more than once returns nil.
func (f *SequentialFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return backendError(f.path, f.file.Close())
}
