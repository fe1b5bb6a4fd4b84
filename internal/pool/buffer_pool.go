// Package pool provides reusable fixed-capacity byte buffers.
// Uses sync.Pool so buffers released by closed writers serve new ones.
package pool

import "sync"

// Buffers hands out empty buffers of one fixed capacity.
// It is safe for concurrent use.
type Buffers struct {
	size int
	pool sync.Pool
}

// NewBuffers creates a pool of buffers with capacity size.
func NewBuffers(size int) *Buffers {
	b := &Buffers{size: size}
	b.pool.New = func() any {
		buf := make([]byte, 0, size)
		return &buf
	}
	return b
}

// Size returns the capacity of the buffers.
func (b *Buffers) Size() int {
	return b.size
}

// Get retrieves an empty buffer with capacity Size.
func (b *Buffers) Get() []byte {
	return (*b.pool.Get().(*[]byte))[:0]
}

// Put returns buf to the pool. Buffers of another capacity are dropped.
func (b *Buffers) Put(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:0]
	b.pool.Put(&buf)
}
