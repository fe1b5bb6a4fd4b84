//go:build linux

package vfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncData flushes file data without forcing a metadata write.
func syncData(f *os.File) error {
	for {
		err := unix.Fdatasync(int(f.Fd()))
		if err != unix.EINTR {
			if err != nil {
				return &os.PathError{Op: "fdatasync", Path: f.Name(), Err: err}
			}
			return nil
		}
	}
}
