package fsenv

import (
	"math"
	"math/bits"
	"sync"
)

const (
	// fallbackFDLimit is used when the descriptor limit cannot be queried.
	fallbackFDLimit = 50

	// mmapLimit64 is the number of concurrent mappings on 64-bit platforms.
	// 32-bit address space is too small to map files by default.
	mmapLimit64 = 1000
)

var (
	limitsMu          sync.Mutex
	readOnlyFDLimit   = -1
	readOnlyMMapLimit = -1
)

// SetReadOnlyFDLimit overrides the descriptor cap of the default Env.
// It panics if Default has already been called.
func SetReadOnlyFDLimit(n int) {
	limitsMu.Lock()
	defer limitsMu.Unlock()
	if defaultCreated.Load() {
		panic("fsenv: SetReadOnlyFDLimit called after Default")
	}
	readOnlyFDLimit = n
}

// SetReadOnlyMMapLimit overrides the mapping cap of the default Env.
// It panics if Default has already been called.
func SetReadOnlyMMapLimit(n int) {
	limitsMu.Lock()
	defer limitsMu.Unlock()
	if defaultCreated.Load() {
		panic("fsenv: SetReadOnlyMMapLimit called after Default")
	}
	readOnlyMMapLimit = n
}

// defaultFDLimit is a fifth of the soft descriptor limit, leaving the rest
// for writers, logs and the caller.
func defaultFDLimit() int {
	n, ok := maxOpenFiles()
	switch {
	case !ok:
		return fallbackFDLimit
	case n == math.MaxInt:
		return math.MaxInt
	default:
		return n / 5
	}
}

func defaultMMapLimit() int {
	if bits.UintSize == 64 {
		return mmapLimit64
	}
	return 0
}
