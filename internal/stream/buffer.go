package stream

import "sync"

// GrowableBuffer is a thread-safe FIFO that doubles its capacity once it is
// 70% full. With a positive max capacity it stops growing there and evicts the
// oldest item instead.
type GrowableBuffer[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int // Next read
	tail   int // Next write
	count  int
	max    int // 0 = unbounded
	closed bool

	// Stats
	pushed  int64
	popped  int64
	dropped int64
	resizes int
}

// BufferStats contains buffer counters.
type BufferStats struct {
	Count    int
	Capacity int
	Pushed   int64
	Popped   int64
	Dropped  int64 // Evicted at max capacity
	Resizes  int
}

// NewGrowableBuffer creates a buffer with the given initial capacity. A
// maxCapacity of 0 lets it grow without bound.
func NewGrowableBuffer[T any](initialCapacity, maxCapacity int) *GrowableBuffer[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	if maxCapacity > 0 && maxCapacity < initialCapacity {
		maxCapacity = initialCapacity
	}
	b := &GrowableBuffer[T]{
		ring: make([]T, initialCapacity),
		max:  maxCapacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Send appends item. It returns false once the buffer is closed.
func (b *GrowableBuffer[T]) Send(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	capacity := len(b.ring)
	threshold := max(capacity*70/100, 1)
	if b.count+1 >= threshold && (b.max == 0 || capacity < b.max) {
		b.growLocked()
	}

	if b.count == len(b.ring) {
		b.popLocked()
		b.popped--
		b.dropped++
	}

	b.ring[b.tail] = item
	b.tail = (b.tail + 1) % len(b.ring)
	b.count++
	b.pushed++

	b.cond.Signal()
	return true
}

// Receive blocks until an item is available and returns it. It returns false
// once the buffer is closed and empty.
func (b *GrowableBuffer[T]) Receive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.popLocked(), true
}

// TryReceive returns the next item without blocking.
func (b *GrowableBuffer[T]) TryReceive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.popLocked(), true
}

// DrainTo removes up to limit items (all of them when limit <= 0).
func (b *GrowableBuffer[T]) DrainTo(limit int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}

	n := b.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, n)
	for i := range out {
		out[i] = b.popLocked()
	}
	return out
}

// Close rejects further sends and wakes blocked receivers. Buffered items can
// still be received. Closing twice is a no-op.
func (b *GrowableBuffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

// Len returns the number of buffered items.
func (b *GrowableBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the current capacity.
func (b *GrowableBuffer[T]) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ring)
}

// Stats returns buffer counters.
func (b *GrowableBuffer[T]) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Count:    b.count,
		Capacity: len(b.ring),
		Pushed:   b.pushed,
		Popped:   b.popped,
		Dropped:  b.dropped,
		Resizes:  b.resizes,
	}
}

// popLocked removes the head item. Caller holds mu and count > 0.
func (b *GrowableBuffer[T]) popLocked() T {
	var zero T
	item := b.ring[b.head]
	b.ring[b.head] = zero
	b.head = (b.head + 1) % len(b.ring)
	b.count--
	b.popped++
	return item
}

// growLocked doubles capacity, clamped to max, and unwraps the ring.
func (b *GrowableBuffer[T]) growLocked() {
	size := len(b.ring) * 2
	if b.max > 0 && size > b.max {
		size = b.max
	}
	ring := make([]T, size)

	if b.count > 0 {
		if b.head < b.tail {
			copy(ring, b.ring[b.head:b.tail])
		} else {
			n := copy(ring, b.ring[b.head:])
			copy(ring[n:], b.ring[:b.tail])
		}
	}

	b.ring = ring
	b.head = 0
	b.tail = b.count
	b.resizes++
}
