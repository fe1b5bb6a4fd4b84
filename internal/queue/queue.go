// Package queue provides a growable FIFO ring buffer.
package queue

// FIFO is a first-in first-out queue backed by a ring buffer.
// Not safe for concurrent use; callers guard it with their own lock.
type FIFO[T any] struct {
	items []T
	head  int // index of the oldest item
	size  int
}

// Len returns the number of queued items.
func (q *FIFO[T]) Len() int {
	return q.size
}

// Empty reports whether the queue holds no items.
func (q *FIFO[T]) Empty() bool {
	return q.size == 0
}

// Push appends v at the tail.
func (q *FIFO[T]) Push(v T) {
	if q.size == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.size)%len(q.items)] = v
	q.size++
}

// Pop removes and returns the oldest item.
func (q *FIFO[T]) Pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero // drop the reference for the GC
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return v, true
}

func (q *FIFO[T]) grow() {
	n := len(q.items) * 2
	if n == 0 {
		n = 8
	}
	items := make([]T, n)
	for i := 0; i < q.size; i++ {
		items[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = items
	q.head = 0
}
