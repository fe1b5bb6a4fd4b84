//go:build unix

package vfs

import (
	"io"

	"golang.org/x/sys/unix"
)

// lockFile sets or clears a POSIX record lock spanning the whole file.
// F_SETLK fails immediately if another process holds the lock.
func lockFile(fd uintptr, lock bool) error {
	info := unix.Flock_t{
		Type:   unix.F_UNLCK,
		Whence: io.SeekStart,
		Start:  0,
		Len:    0, // entire file
	}
	if lock {
		info.Type = unix.F_WRLCK
	}
	for {
		err := unix.FcntlFlock(fd, unix.F_SETLK, &info)
		if err != unix.EINTR {
			return err
		}
	}
}
