package vfs

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	FailAfterBytes int64 // Fail writes after this many bytes written TO THIS FILE. -1 to disable.
	FailOnSync     bool
	FailOnClose    bool
	FailOnLock     bool

	// InterruptWrites makes the first N Write calls on each opened file
	// return syscall.EINTR without writing anything.
	InterruptWrites int
	// InterruptReads does the same for Read and ReadAt.
	InterruptReads int
	// PartialInterruptReads makes the first N Read calls read at most half
	// of the buffer and return those bytes together with EINTR.
	PartialInterruptReads int
	// ShortWrites makes the first N Write calls write only half of the
	// buffer and return io.ErrShortWrite.
	ShortWrites int

	Err error
}

// OpKind names a recorded backend call.
type OpKind string

const (
	OpOpen   OpKind = "open"
	OpSync   OpKind = "sync"
	OpClose  OpKind = "close"
	OpLock   OpKind = "lock"
	OpUnlock OpKind = "unlock"
	OpRemove OpKind = "remove"
	OpRmdir  OpKind = "rmdir"
	OpRename OpKind = "rename"
	OpMkdir  OpKind = "mkdir"
)

// Op is one recorded backend call.
type Op struct {
	Kind OpKind
	Path string
}

// FaultyFS is a FileSystem wrapper that can inject errors and records the
// order of the calls it sees.
type FaultyFS struct {
	FS      FileSystem
	mu      sync.Mutex
	rules   map[string]Fault // Filename pattern -> Fault
	Default Fault            // Fallback

	// Err is used by faults that do not carry their own error.
	Err         error
	written     int64
	globalLimit int64
	ops         []Op
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{
		FS:    fs,
		rules: make(map[string]Fault),
		Default: Fault{
			FailAfterBytes: -1, // No limit
		},
		Err:         ErrInjected,
		globalLimit: -1,
	}
}

// GetWritten returns the total bytes written through all files so far.
func (f *FaultyFS) GetWritten() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

// SetLimit sets a byte limit shared by all files.
func (f *FaultyFS) SetLimit(limit int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.globalLimit = limit
}

// AddRule adds a fault injection rule for files whose name contains pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Ops returns a copy of the recorded calls in the order they were issued.
func (f *FaultyFS) Ops() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Op, len(f.ops))
	copy(out, f.ops)
	return out
}

// ResetOps clears the recorded calls.
func (f *FaultyFS) ResetOps() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = f.ops[:0]
}

func (f *FaultyFS) record(kind OpKind, path string) {
	f.mu.Lock()
	f.ops = append(f.ops, Op{Kind: kind, Path: path})
	f.mu.Unlock()
}

func (f *FaultyFS) faultFor(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()
	fault := f.Default
	// Longest matching pattern wins so that rules are deterministic.
	best := -1
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) && len(pattern) > best {
			fault = rule
			best = len(pattern)
		}
	}
	if fault.Err == nil {
		fault.Err = f.Err
	}
	return fault
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	f.record(OpOpen, name)

	fault := f.faultFor(name)
	return &faultyFile{
		File:       file,
		fs:         f,
		name:       name,
		fault:      fault,
		interruptW: fault.InterruptWrites,
		interruptR: fault.InterruptReads,
		partialR:   fault.PartialInterruptReads,
		shortW:     fault.ShortWrites,
	}, nil
}

func (f *FaultyFS) Remove(name string) error {
	f.record(OpRemove, name)
	return f.FS.Remove(name)
}

func (f *FaultyFS) Rmdir(path string) error {
	f.record(OpRmdir, path)
	return f.FS.Rmdir(path)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	f.record(OpRename, oldpath)
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}

func (f *FaultyFS) Mkdir(path string, perm os.FileMode) error {
	f.record(OpMkdir, path)
	return f.FS.Mkdir(path, perm)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	f.record(OpMkdir, path)
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	return f.FS.ReadDir(name)
}

func (f *FaultyFS) Lock(file File) error {
	name := nameOf(file)
	f.record(OpLock, name)
	if ff, ok := file.(*faultyFile); ok && ff.fault.FailOnLock {
		return ff.fault.Err
	}
	return f.FS.Lock(unwrap(file))
}

func (f *FaultyFS) Unlock(file File) error {
	f.record(OpUnlock, nameOf(file))
	return f.FS.Unlock(unwrap(file))
}

func nameOf(file File) string {
	if ff, ok := file.(*faultyFile); ok {
		return ff.name
	}
	return ""
}

func unwrap(file File) File {
	if ff, ok := file.(*faultyFile); ok {
		return ff.File
	}
	return file
}

type faultyFile struct {
	File
	fs      *FaultyFS
	name    string
	fault   Fault
	written int64

	mu         sync.Mutex
	interruptW int
	interruptR int
	partialR   int
	shortW     int
}

// take decrements *counter if positive and reports whether it did.
func (ff *faultyFile) take(counter *int) bool {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if *counter > 0 {
		*counter--
		return true
	}
	return false
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if ff.take(&ff.interruptR) {
		return 0, syscall.EINTR
	}
	if len(p) > 1 && ff.take(&ff.partialR) {
		n, err := ff.File.Read(p[:len(p)/2])
		if err != nil {
			return n, err
		}
		return n, syscall.EINTR
	}
	return ff.File.Read(p)
}

func (ff *faultyFile) ReadAt(p []byte, off int64) (int, error) {
	if ff.take(&ff.interruptR) {
		return 0, syscall.EINTR
	}
	return ff.File.ReadAt(p, off)
}

func (ff *faultyFile) Write(p []byte) (n int, err error) {
	if ff.take(&ff.interruptW) {
		return 0, syscall.EINTR
	}

	// Check per-file limit FIRST before updating global counter
	if ff.fault.FailAfterBytes >= 0 {
		if ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
			return 0, ff.fault.Err
		}
	}

	ff.fs.mu.Lock()
	globalExceeded := ff.fs.globalLimit >= 0 && ff.fs.written+int64(len(p)) > ff.fs.globalLimit
	if !globalExceeded {
		ff.fs.written += int64(len(p))
	}
	ff.fs.mu.Unlock()

	if globalExceeded {
		return 0, ff.fs.Err
	}

	short := len(p) > 1 && ff.take(&ff.shortW)
	if short {
		p = p[:len(p)/2]
	}

	n, err = ff.File.Write(p)
	if n > 0 {
		ff.written += int64(n)
	}
	if short && err == nil {
		err = io.ErrShortWrite
	}
	return n, err
}

func (ff *faultyFile) Sync() error {
	ff.fs.record(OpSync, ff.name)
	if ff.fault.FailOnSync {
		return ff.fault.Err
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	ff.fs.record(OpClose, ff.name)
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return ff.fault.Err
	}
	return ff.File.Close()
}
