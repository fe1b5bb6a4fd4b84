package fsenv

import (
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/hupe1980/fsenv/internal/mmap"
	"github.com/hupe1980/fsenv/internal/resource"
	"github.com/hupe1980/fsenv/vfs"
)

// RandomAccessFile reads a file at arbitrary offsets.
// It is safe for concurrent use by multiple goroutines.
type RandomAccessFile interface {
	// Read returns the bytes at [offset, offset+len(scratch)). Near end of
	// file the result is shorter than scratch; that is not an error.
	// The result may refer to scratch or to memory owned by the file, and
	// stays valid until Close.
	Read(offset int64, scratch []byte) ([]byte, error)

	// Close releases the file. Calling Close more than once returns nil.
	Close() error
}

// mmapRandomAccessFile serves reads from a mapping of the whole file.
type mmapRandomAccessFile struct {
	path    string
	mapping *mmap.Mapping
	limiter *resource.Limiter
	metrics MetricsCollector
	closed  atomic.Bool
}

func (f *mmapRandomAccessFile) Read(offset int64, scratch []byte) ([]byte, error) {
	if f.closed.Load() {
		return nil, backendError(f.path, os.ErrClosed)
	}
	data := f.mapping.Bytes()
	n := int64(len(scratch))
	if offset < 0 || offset > int64(len(data))-n {
		err := invalidArgument(f.path)
		f.metrics.RecordRead(0, 0, err)
		return nil, err
	}
	f.metrics.RecordRead(int(n), 0, nil)
	return data[offset : offset+n : offset+n], nil
}

func (f *mmapRandomAccessFile) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	err := f.mapping.Close()
	f.limiter.Release()
	return backendError(f.path, err)
}

// fdRandomAccessFile serves reads with positional reads. When file is nil
// the descriptor limit was exhausted at construction and every read opens
// the path afresh.
type fdRandomAccessFile struct {
	fs      vfs.FileSystem
	path    string
	file    vfs.File
	limiter *resource.Limiter // nil unless file holds a descriptor unit
	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool
}

func (f *fdRandomAccessFile) Read(offset int64, scratch []byte) ([]byte, error) {
	if f.closed.Load() {
		return nil, backendError(f.path, os.ErrClosed)
	}
	if offset < 0 {
		return nil, invalidArgument(f.path)
	}

	file := f.file
	if file == nil {
		var err error
		file, err = f.fs.OpenFile(f.path, os.O_RDONLY, 0)
		if err != nil {
			return nil, backendError(f.path, err)
		}
		defer file.Close()
	}

	n, err := preadFull(file, scratch, offset)
	f.metrics.RecordRead(n, 0, err)
	if err != nil {
		f.logger.LogRead(f.path, offset, len(scratch), err)
		return nil, backendError(f.path, err)
	}
	return scratch[:n], nil
}

func (f *fdRandomAccessFile) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	if f.limiter != nil {
		f.limiter.Release()
	}
	return backendError(f.path, err)
}

// preadFull reads until p is full, end of file, or a failure other than an
// interrupted call.
func preadFull(f io.ReaderAt, p []byte, off int64) (int, error) {
	var total int
	for total < len(p) {
		n, err := f.ReadAt(p[total:], off+int64(total))
		total += n
		switch {
		case err == nil:
			if n == 0 {
				return total, nil
			}
		case isInterrupted(err):
		case errors.Is(err, io.EOF):
			return total, nil
		default:
			return total, err
		}
	}
	return total, nil
}
