package device

import "sync"

// Budget is a fixed-capacity byte counter for one device's memory pool.
//
// Allocations reserve bytes before touching storage and release them when
// the storage is dropped, so Free never exceeds Total.
// Budget is safe for concurrent use.
type Budget struct {
	mu    sync.Mutex
	total uint64
	used  uint64
	peak  uint64
}

// NewBudget creates a budget with the given capacity in bytes.
func NewBudget(total uint64) *Budget {
	return &Budget{total: total}
}

// Reserve claims n bytes. It fails with ErrOutOfMemory without changing
// the budget if fewer than n bytes are free.
func (b *Budget) Reserve(n uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	free := b.total - b.used
	if n > free {
		return &OutOfMemoryError{Requested: n, Free: free}
	}
	b.used += n
	if b.used > b.peak {
		b.peak = b.used
	}
	return nil
}

// Release returns n bytes to the budget. Releasing more than is in use
// clamps at zero.
func (b *Budget) Release(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.used {
		b.used = 0
		return
	}
	b.used -= n
}

// Total returns the capacity in bytes.
func (b *Budget) Total() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Free returns the unreserved bytes.
func (b *Budget) Free() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total - b.used
}

// Used returns the reserved bytes.
func (b *Budget) Used() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Peak returns the high-water mark of reserved bytes.
func (b *Budget) Peak() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peak
}
