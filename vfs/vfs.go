package vfs

import (
	"io"
	"os"
	"syscall"
)

// File represents an open file.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.Seeker

	// Sync flushes the file's data to stable storage. LocalFS uses
	// fdatasync where the platform has it.
	Sync() error
	Stat() (os.FileInfo, error)

	// Fd returns the native descriptor. Used for mmap and advisory locks.
	Fd() uintptr
}

// FileSystem abstracts the storage backend.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	// Rmdir removes an empty directory. It fails on anything else.
	Rmdir(path string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	Mkdir(path string, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)

	// Lock takes an exclusive advisory lock on the whole file without
	// blocking. It does not detect a second lock from the same process.
	Lock(f File) error
	// Unlock releases a lock taken by Lock.
	Unlock(f File) error
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return localFile{File: f}, nil
}

func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Rmdir(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "rmdir", Path: path, Err: syscall.ENOTDIR}
	}
	return os.Remove(path)
}

func (LocalFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

func (LocalFS) Lock(f File) error   { return lockFile(f.Fd(), true) }
func (LocalFS) Unlock(f File) error { return lockFile(f.Fd(), false) }

// localFile overrides Sync with a data-only sync.
type localFile struct {
	*os.File
}

func (f localFile) Sync() error {
	return syncData(f.File)
}

// Default is the default local file system.
var Default FileSystem = LocalFS{}
