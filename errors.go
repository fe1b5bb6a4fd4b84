package fsenv

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	// ErrNotFound is the kind of errors for paths absent at open or stat time.
	ErrNotFound = errors.New("not found")

	// ErrIO is the kind of every other backend failure.
	ErrIO = errors.New("io error")

	// ErrInvalidArgument is the kind of errors for requests the layer
	// rejects, such as a mapped read past the end of the file.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyHeld is returned when a path is already locked by this process.
	ErrAlreadyHeld = errors.New("lock already held by process")

	// ErrNotSupported is returned for operations disabled by configuration.
	ErrNotSupported = errors.New("not supported")
)

// Error is the error type returned by Env and the files it creates.
//
// Both the kind and the backend error can be matched with errors.Is:
//
//	if errors.Is(err, fsenv.ErrNotFound) { ... }
//	if errors.Is(err, os.ErrNotExist) { ... }
type Error struct {
	Kind error  // one of the Err* kinds above
	Path string // path or "<op> <path>" context
	Err  error  // backend error, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// backendError classifies a backend failure.
func backendError(context string, err error) error {
	if err == nil {
		return nil
	}
	kind := ErrIO
	if errors.Is(err, fs.ErrNotExist) {
		kind = ErrNotFound
	}
	return &Error{Kind: kind, Path: context, Err: err}
}

func invalidArgument(context string) error {
	return &Error{Kind: ErrInvalidArgument, Path: context, Err: syscall.EINVAL}
}

// isInterrupted reports whether err is an interrupted system call, which the
// caller retries.
func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}
