package fsenv

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/fsenv/internal/pool"
	"github.com/hupe1980/fsenv/vfs"
)

// WritableFile is an append-only file with staged writes.
//
// Staging happens in Appenders. Each goroutine that appends concurrently
// must use its own Appender; Append, Flush and Sync on the WritableFile
// itself use a primary Appender and so belong to a single goroutine.
// Staged bytes reach the file on Flush, Sync, Close, or when a buffer fills.
//
// Close must not run concurrently with any Append.
type WritableFile struct {
	fs       vfs.FileSystem
	file     vfs.File
	w        io.Writer // file, possibly throttled
	path     string
	dir      string
	manifest bool
	buffers  *pool.Buffers

	mu sync.Mutex // serializes unbuffered writes

	regMu     sync.Mutex
	appenders []*Appender
	primary   *Appender

	closed  atomic.Bool
	logger  *Logger
	metrics MetricsCollector
}

// Appender stages appends for one goroutine.
type Appender struct {
	w   *WritableFile
	buf []byte // len is the staged byte count, allocated on first Append
}

func newWritableFile(e *Env, path string, file vfs.File) *WritableFile {
	dir, base := splitPath(path)
	w := &WritableFile{
		fs:       e.opts.fs,
		file:     file,
		w:        e.throttle.Writer(file),
		path:     path,
		dir:      dir,
		manifest: e.opts.manifestPrefix != "" && strings.HasPrefix(base, e.opts.manifestPrefix),
		buffers:  e.buffers,
		logger:   e.opts.logger,
		metrics:  e.opts.metricsCollector,
	}
	w.primary = w.Appender()
	return w
}

// splitPath splits at the last '/'. A path without one lives in ".".
func splitPath(path string) (dir, base string) {
	i := strings.LastIndexByte(path, '/')
	switch {
	case i < 0:
		return ".", path
	case i == 0:
		return "/", path[1:]
	default:
		return path[:i], path[i+1:]
	}
}

// Name returns the path the file was opened with.
func (w *WritableFile) Name() string { return w.path }

// IsManifest reports whether Sync also syncs the containing directory.
func (w *WritableFile) IsManifest() bool { return w.manifest }

// Appender returns a new staging handle bound to w. Its buffer is taken on
// first Append and held until w is closed.
func (w *WritableFile) Appender() *Appender {
	a := &Appender{w: w}
	w.regMu.Lock()
	w.appenders = append(w.appenders, a)
	w.regMu.Unlock()
	return a
}

// Append stages data through the primary appender.
func (w *WritableFile) Append(data []byte) error { return w.primary.Append(data) }

// Flush writes the primary appender's staged bytes to the file.
func (w *WritableFile) Flush() error { return w.primary.Flush() }

// Sync flushes the primary appender and makes the file durable.
func (w *WritableFile) Sync() error { return w.primary.Sync() }

// Close flushes every appender and closes the file.
// Calling Close more than once returns nil.
func (w *WritableFile) Close() error {
	if w.closed.Swap(true) {
		return nil
	}

	w.regMu.Lock()
	appenders := w.appenders
	w.appenders = nil
	w.regMu.Unlock()

	var errs []error
	for _, a := range appenders {
		if err := a.flush(); err != nil {
			errs = append(errs, err)
		}
		if a.buf != nil {
			w.buffers.Put(a.buf)
			a.buf = nil
		}
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, backendError(w.path, err))
	}
	return errors.Join(errs...)
}

func (w *WritableFile) errClosed() error {
	return backendError(w.path, os.ErrClosed)
}

// writeUnbuffered writes all of p, retrying interrupted calls and
// continuing after short writes.
func (w *WritableFile) writeUnbuffered(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	size := len(p)

	var err error
	for len(p) > 0 {
		var n int
		n, err = w.w.Write(p)
		p = p[n:]
		if err == nil && n == 0 {
			err = io.ErrNoProgress
			break
		}
		if err == nil || errors.Is(err, io.ErrShortWrite) || isInterrupted(err) {
			err = nil
			continue
		}
		break
	}

	w.metrics.RecordWrite(size-len(p), time.Since(start), err)
	if err != nil {
		w.logger.LogWrite(w.path, size, err)
		return backendError(w.path, err)
	}
	return nil
}

// syncDir makes the directory entry of a manifest durable.
func (w *WritableFile) syncDir() error {
	d, err := w.fs.OpenFile(w.dir, os.O_RDONLY, 0)
	if err != nil {
		return backendError(w.dir, err)
	}
	err = d.Sync()
	w.logger.LogSync(w.dir, true, err)
	if cerr := d.Close(); err == nil {
		err = cerr
	}
	return backendError(w.dir, err)
}

// Append stages data, flushing to the file when the buffer fills.
// Data at least as large as the buffer bypasses it.
func (a *Appender) Append(data []byte) error {
	w := a.w
	if w.closed.Load() {
		return w.errClosed()
	}
	if a.buf == nil {
		a.buf = w.buffers.Get()
	}

	n := copy(a.buf[len(a.buf):cap(a.buf)], data)
	a.buf = a.buf[:len(a.buf)+n]
	data = data[n:]
	if len(data) == 0 {
		return nil
	}

	if err := a.flush(); err != nil {
		return err
	}
	if len(data) < w.buffers.Size() {
		a.buf = append(a.buf, data...)
		return nil
	}
	return w.writeUnbuffered(data)
}

// Flush writes the staged bytes to the file.
func (a *Appender) Flush() error {
	if a.w.closed.Load() {
		return a.w.errClosed()
	}
	return a.flush()
}

func (a *Appender) flush() error {
	if len(a.buf) == 0 {
		return nil
	}
	err := a.w.writeUnbuffered(a.buf)
	a.buf = a.buf[:0]
	return err
}

// Sync flushes the staged bytes and syncs the file. For manifest files
// the containing directory is synced before anything else.
func (a *Appender) Sync() error {
	w := a.w
	if w.closed.Load() {
		return w.errClosed()
	}

	start := time.Now()
	if w.manifest {
		if err := w.syncDir(); err != nil {
			w.metrics.RecordSync(true, time.Since(start), err)
			return err
		}
	}
	if err := a.flush(); err != nil {
		return err
	}

	err := w.file.Sync()
	w.metrics.RecordSync(w.manifest, time.Since(start), err)
	w.logger.LogSync(w.path, false, err)
	return backendError(w.path, err)
}
