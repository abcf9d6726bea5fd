package safeptr

import "sync/atomic"

// Weak observes a container without keeping its value alive. It can attempt
// the same borrows as the owner for as long as the owner manages the value.
// Use Clone to copy a Weak; every Weak must be Released once.
type Weak[T any] struct {
	c        *control[T]
	released atomic.Bool
}

func newWeak[T any](c *control[T]) *Weak[T] {
	if c != nil {
		c.acquireWeak()
	}
	return &Weak[T]{c: c}
}

// Clone returns another observer of the same container.
func (w *Weak[T]) Clone() *Weak[T] {
	if w.released.Load() {
		return &Weak[T]{}
	}
	return newWeak(w.c)
}

// Release drops the observer. Further calls are no-ops.
func (w *Weak[T]) Release() {
	if w.c != nil && w.released.CompareAndSwap(false, true) {
		w.c.releaseWeak()
	}
}

// Expired reports whether the owner has released the value.
func (w *Weak[T]) Expired() bool {
	return w.c == nil || w.released.Load() || !w.c.alive()
}

// Read is like TryRead but returns ErrExpired when the value is unavailable.
func (w *Weak[T]) Read() (Reader[T], error) {
	r, ok := w.TryRead()
	if !ok {
		return Reader[T]{}, ErrExpired
	}
	return r, nil
}

// TryRead acquires a read borrow if the value is still alive. It never blocks.
func (w *Weak[T]) TryRead() (Reader[T], bool) {
	if w.Expired() {
		return Reader[T]{}, false
	}
	r := newReader(w.c)
	// the owner may have released between the check and the snapshot.
	if !r.Valid() {
		r.Release()
		return Reader[T]{}, false
	}
	return r, true
}

// TryWrite admits a write session if the value is still alive and no other
// session is in progress. It never blocks.
func (w *Weak[T]) TryWrite() (*Writer[T], bool) {
	if w.Expired() || !w.c.mu.TryLock() {
		return nil, false
	}
	if !w.c.alive() {
		w.c.mu.Unlock()
		return nil, false
	}
	return newWriter(w.c), true
}
