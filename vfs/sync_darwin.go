//go:build darwin

package vfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncData asks the drive to flush its cache. Some file systems reject
// F_FULLFSYNC, in which case a plain fsync is the best available.
func syncData(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0); err == nil {
		return nil
	}
	return f.Sync()
}
