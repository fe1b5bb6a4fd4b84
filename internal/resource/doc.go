// Package resource implements admission control for scarce OS resources.
//
//	┌───────────────────────────────┬───────────────────────────────┐
//	│  Limiter                      │  Throttle                     │
//	│  (fail-fast counting gate)    │  (token bucket)               │
//	├───────────────────────────────┼───────────────────────────────┤
//	│  Acquire / Release            │  WaitN / Writer               │
//	│  read-only descriptors, mmaps │  unbuffered write bandwidth   │
//	└───────────────────────────────┴───────────────────────────────┘
//
// # Limiter
//
// A Limiter is an atomic counter initialised to a capacity. Acquire never
// blocks: it either claims a unit or reports that none is left, and the
// caller falls back to a strategy that does not need the resource:
//
//	if lim.Acquire() {
//	    defer lim.Release()
//	    // keep the descriptor open
//	}
//
// The counter is not tied to any other state, so relaxed atomics suffice.
//
// # Throttle
//
// Throttle rate-limits bytes written, so that large background writes do not
// starve foreground I/O:
//
//	th := resource.NewThrottle(64 << 20) // 64MB/s
//	w := th.Writer(file)
//
// # Nil Safety
//
// A nil *Throttle is unlimited; all methods become no-ops.
package resource
