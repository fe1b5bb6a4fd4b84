package fsenv

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/fsenv/internal/mmap"
	"github.com/hupe1980/fsenv/internal/pool"
	"github.com/hupe1980/fsenv/internal/resource"
	"github.com/hupe1980/fsenv/vfs"
)

// Env is the file system and threading environment of a storage engine.
// All methods are safe for concurrent use.
//
// Most programs use the process-wide Default. New builds an independent
// Env, typically for tests or for a non-local backend.
type Env struct {
	opts        options
	fdLimiter   *resource.Limiter
	mmapLimiter *resource.Limiter
	throttle    *resource.Throttle
	buffers     *pool.Buffers
	locks       *lockTable
	sched       *scheduler

	singleton bool
	closed    atomic.Bool
}

var (
	defaultOnce    sync.Once
	defaultEnv     *Env
	defaultCreated atomic.Bool
)

// Default returns the process-wide Env. It is created on first use and
// lives until the process exits; closing it panics.
func Default() *Env {
	defaultOnce.Do(func() {
		limitsMu.Lock()
		defaultCreated.Store(true)
		fdLimit, mmapLimit := readOnlyFDLimit, readOnlyMMapLimit
		limitsMu.Unlock()

		defaultEnv = New(WithReadOnlyFDLimit(fdLimit), WithMmapLimit(mmapLimit))
		defaultEnv.singleton = true
	})
	return defaultEnv
}

// New creates an Env with the given options.
func New(optFns ...Option) *Env {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.fdLimit < 0 {
		opts.fdLimit = defaultFDLimit()
	}
	if opts.mmapLimit < 0 {
		opts.mmapLimit = defaultMMapLimit()
	}
	opts.logger.LogLimits(opts.fdLimit, opts.mmapLimit)

	return &Env{
		opts:        opts,
		fdLimiter:   resource.NewLimiter(opts.fdLimit),
		mmapLimiter: resource.NewLimiter(opts.mmapLimit),
		throttle:    resource.NewThrottle(opts.writeRateLimit),
		buffers:     pool.NewBuffers(opts.writeBufferSize),
		locks:       newLockTable(),
		sched:       newScheduler(opts.clock, opts.logger, opts.metricsCollector),
	}
}

// Close stops the background worker after it has run every queued item.
// Calling Close on the Env returned by Default panics.
func (e *Env) Close() error {
	if e.singleton {
		panic("fsenv: unsupported lifecycle operation: the default Env cannot be closed")
	}
	if e.closed.Swap(true) {
		return nil
	}
	e.sched.stop()
	return nil
}

// NewSequentialFile opens path for reading from the beginning.
func (e *Env) NewSequentialFile(path string) (*SequentialFile, error) {
	f, err := e.opts.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, backendError(path, err)
	}
	return &SequentialFile{
		file:      f,
		path:      path,
		skippable: e.opts.sequentialSkip,
		logger:    e.opts.logger,
		metrics:   e.opts.metricsCollector,
	}, nil
}

// NewRandomAccessFile opens path for positional reads. The file is
// memory-mapped while mappings are available, then served from a kept
// descriptor while descriptors are available, and otherwise reopened on
// every read.
func (e *Env) NewRandomAccessFile(path string) (RandomAccessFile, error) {
	f, err := e.opts.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, backendError(path, err)
	}

	if e.mmapLimiter.Acquire() {
		m, err := mapFile(f)
		// The mapping stays valid after the descriptor is closed.
		_ = f.Close()
		if err != nil {
			e.mmapLimiter.Release()
			return nil, backendError(path, err)
		}
		_ = m.Advise(mmap.AccessRandom)
		return &mmapRandomAccessFile{
			path:    path,
			mapping: m,
			limiter: e.mmapLimiter,
			metrics: e.opts.metricsCollector,
		}, nil
	}

	r := &fdRandomAccessFile{
		fs:      e.opts.fs,
		path:    path,
		logger:  e.opts.logger,
		metrics: e.opts.metricsCollector,
	}
	if e.fdLimiter.Acquire() {
		r.file = f
		r.limiter = e.fdLimiter
	} else {
		_ = f.Close()
	}
	return r, nil
}

func mapFile(f vfs.File) (*mmap.Mapping, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return mmap.Map(f, info.Size())
}

// NewWritableFile creates path, truncating any existing file.
func (e *Env) NewWritableFile(path string) (*WritableFile, error) {
	return e.openWritable(path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE)
}

// NewAppendableFile opens path for appending, creating it if needed.
func (e *Env) NewAppendableFile(path string) (*WritableFile, error) {
	return e.openWritable(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE)
}

func (e *Env) openWritable(path string, flag int) (*WritableFile, error) {
	f, err := e.opts.fs.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, backendError(path, err)
	}
	return newWritableFile(e, path, f), nil
}

// FileExists reports whether path exists.
func (e *Env) FileExists(path string) bool {
	_, err := e.opts.fs.Stat(path)
	return err == nil
}

// GetChildren returns the names of the entries in dir.
func (e *Env) GetChildren(dir string) ([]string, error) {
	entries, err := e.opts.fs.ReadDir(dir)
	if err != nil {
		return nil, backendError(dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// DeleteFile removes a file.
func (e *Env) DeleteFile(path string) error {
	return backendError(path, e.opts.fs.Remove(path))
}

// CreateDir creates a single directory with mode 0755.
func (e *Env) CreateDir(path string) error {
	return backendError(path, e.opts.fs.Mkdir(path, 0755))
}

// DeleteDir removes an empty directory.
func (e *Env) DeleteDir(path string) error {
	return backendError(path, e.opts.fs.Rmdir(path))
}

// GetFileSize returns the size of path in bytes.
func (e *Env) GetFileSize(path string) (uint64, error) {
	info, err := e.opts.fs.Stat(path)
	if err != nil {
		return 0, backendError(path, err)
	}
	return uint64(info.Size()), nil
}

// RenameFile atomically replaces dst with src.
func (e *Env) RenameFile(src, dst string) error {
	return backendError(src, e.opts.fs.Rename(src, dst))
}

// FileLock is a held advisory lock. Release it with Env.UnlockFile.
type FileLock struct {
	file     vfs.File
	path     string
	released atomic.Bool
}

// Path returns the locked path.
func (l *FileLock) Path() string { return l.path }

// LockFile creates path if needed and takes an exclusive advisory lock on
// it. Locking a path this process already holds fails with ErrAlreadyHeld.
func (e *Env) LockFile(path string) (*FileLock, error) {
	f, err := e.opts.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, backendError(path, err)
	}

	if !e.locks.Insert(path) {
		_ = f.Close()
		e.opts.logger.LogLock(path, true, ErrAlreadyHeld)
		return nil, &Error{Kind: ErrAlreadyHeld, Path: "lock " + path}
	}

	if err := e.opts.fs.Lock(f); err != nil {
		_ = f.Close()
		e.locks.Remove(path)
		e.opts.logger.LogLock(path, true, err)
		return nil, &Error{Kind: ErrIO, Path: "lock " + path, Err: err}
	}

	e.opts.logger.LogLock(path, true, nil)
	return &FileLock{file: f, path: path}, nil
}

// UnlockFile releases a lock taken by LockFile. Releasing the same lock
// twice fails with ErrInvalidArgument and leaves later locks untouched.
func (e *Env) UnlockFile(lock *FileLock) error {
	if lock == nil {
		return invalidArgument("unlock")
	}
	if lock.released.Swap(true) {
		return invalidArgument("unlock " + lock.path)
	}

	var result error
	if err := e.opts.fs.Unlock(lock.file); err != nil {
		result = &Error{Kind: ErrIO, Path: "unlock " + lock.path, Err: err}
	}
	e.opts.logger.LogLock(lock.path, false, result)
	e.locks.Remove(lock.path)
	_ = lock.file.Close()
	return result
}

// Schedule runs fn on the background worker. Work items run one at a time
// in the order they were scheduled.
func (e *Env) Schedule(fn func()) {
	e.sched.Schedule(fn)
}

// StartThread runs fn on a new goroutine.
func (e *Env) StartThread(fn func()) {
	go fn()
}

// NowMicros returns the number of microseconds since the Unix epoch.
func (e *Env) NowMicros() uint64 {
	return uint64(e.opts.clock.Now().UnixMicro())
}

// SleepForMicroseconds pauses the calling goroutine.
func (e *Env) SleepForMicroseconds(micros int) {
	e.opts.clock.Sleep(time.Duration(micros) * time.Microsecond)
}

// GetTestDirectory returns a directory for test data, creating it if
// needed. TEST_TMPDIR overrides the default location.
func (e *Env) GetTestDirectory() (string, error) {
	dir := os.Getenv("TEST_TMPDIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("fsenvtest-%d", os.Geteuid()))
	}
	if err := e.opts.fs.MkdirAll(dir, 0755); err != nil {
		return "", backendError(dir, err)
	}
	return dir, nil
}

// NewLogger creates a text logger writing to path, truncating it.
// Close the logger to close the file.
func (e *Env) NewLogger(path string) (*Logger, error) {
	f, err := e.opts.fs.OpenFile(path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, backendError(path, err)
	}
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})),
		closer: f,
	}, nil
}
