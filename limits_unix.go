//go:build unix

package fsenv

import (
	"math"

	"golang.org/x/sys/unix"
)

// maxOpenFiles returns the soft RLIMIT_NOFILE, or ok=false if it cannot be
// queried.
func maxOpenFiles() (n int, ok bool) {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 0, false
	}
	cur := uint64(rlim.Cur)
	if cur >= math.MaxInt {
		return math.MaxInt, true
	}
	return int(cur), true
}
