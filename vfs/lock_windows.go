//go:build windows

package vfs

import (
	"math"

	"golang.org/x/sys/windows"
)

func lockFile(fd uintptr, lock bool) error {
	ol := new(windows.Overlapped)
	if lock {
		return windows.LockFileEx(windows.Handle(fd),
			windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
			0, math.MaxUint32, math.MaxUint32, ol)
	}
	return windows.UnlockFileEx(windows.Handle(fd), 0, math.MaxUint32, math.MaxUint32, ol)
}
