package resource

import "sync/atomic"

// Limiter bounds the number of concurrently held units of a resource.
type Limiter struct {
	// remaining may dip below zero for the duration of a failed Acquire.
	remaining atomic.Int64
}

// NewLimiter creates a Limiter with capacity units available.
func NewLimiter(capacity int) *Limiter {
	l := &Limiter{}
	l.remaining.Store(int64(capacity))
	return l
}

// Acquire claims one unit if available and reports whether it did.
func (l *Limiter) Acquire() bool {
	if l.remaining.Add(-1) >= 0 {
		return true
	}
	l.remaining.Add(1)
	return false
}

// Release returns a unit claimed by a successful Acquire.
func (l *Limiter) Release() {
	l.remaining.Add(1)
}

// Available returns the number of units that can currently be acquired.
func (l *Limiter) Available() int {
	if n := l.remaining.Load(); n > 0 {
		return int(n)
	}
	return 0
}
