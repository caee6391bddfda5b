package cache

import "sync/atomic"

// Snapshot is a lock-free, read-optimized container holding an immutable
// value. Writers replace the whole value; readers never block.
type Snapshot[T any] struct{ p atomic.Pointer[T] }

// Load returns the stored value and whether one has been stored.
func (s *Snapshot[T]) Load() (T, bool) {
	v := s.p.Load()
	if v == nil {
		var z T
		return z, false
	}
	return *v, true
}

// Store atomically swaps in v.
func (s *Snapshot[T]) Store(v T) {
	s.p.Store(&v)
}
