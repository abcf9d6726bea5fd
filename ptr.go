package safeptr

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Ptr is the unique owner of a container. Reads never block and writes are
// serialized. A Ptr must not be copied: use Move to transfer ownership.
//
// The methods of a Ptr are safe to call concurrently with each other, except
// that Reset, Close and Move must not be called while the calling goroutine
// still holds a Writer of the same Ptr.
type Ptr[T any] struct {
	c       atomic.Pointer[control[T]] // not copyable, so neither is Ptr
	opts    options
	dispose func(*T)
}

// New returns a Ptr managing v. A nil v returns an empty Ptr. When the value
// is no longer reachable it is closed if it implements io.Closer.
func New[T any](v *T, opts ...Option) *Ptr[T] {
	return NewWithDisposer(v, nil, opts...)
}

// NewWithDisposer is like New but calls dispose exactly once for every value
// the container owned, including values installed by writers, once no reader
// can observe it any more.
func NewWithDisposer[T any](v *T, dispose func(*T), opts ...Option) *Ptr[T] {
	p := &Ptr[T]{opts: newOptions(opts), dispose: dispose}
	if v != nil {
		p.c.Store(newControl(v, dispose, p.opts))
	}
	return p
}

// Read acquires a read borrow. It never blocks. A Read that races with Close
// or Reset either observes the value or fails with ErrEmptyHandle.
func (p *Ptr[T]) Read() (Reader[T], error) {
	r, ok := p.TryRead()
	if !ok {
		return Reader[T]{}, ErrEmptyHandle
	}
	return r, nil
}

// TryRead is like Read but reports unavailability instead of an error.
func (p *Ptr[T]) TryRead() (Reader[T], bool) {
	c := p.c.Load()
	if c == nil {
		return Reader[T]{}, false
	}
	r := newReader(c)
	// the owner may have released between loading the control and the snapshot.
	if !r.Valid() {
		r.Release()
		return Reader[T]{}, false
	}
	return r, true
}

// Write admits a write session, blocking until any session in progress is
// released.
func (p *Ptr[T]) Write() (*Writer[T], error) {
	c := p.c.Load()
	if c == nil {
		return nil, ErrEmptyHandle
	}
	c.mu.Lock()
	return newWriter(c), nil
}

// TryWrite is like Write but reports unavailability instead of blocking when
// another session is in progress.
func (p *Ptr[T]) TryWrite() (*Writer[T], bool) {
	c := p.c.Load()
	if c == nil || !c.mu.TryLock() {
		return nil, false
	}
	return newWriter(c), true
}

// View calls fn with a read borrow of the current value. The borrow is
// released when fn returns or panics.
func (p *Ptr[T]) View(fn func(v *T) error) error {
	r, err := p.Read()
	if err != nil {
		return err
	}
	defer r.Release()
	return fn(r.Value())
}

// Update calls fn inside a write session. The candidate fn supplies is
// committed when fn returns nil, and discarded when it returns an error or
// panics. The writer lock is released on every path.
func (p *Ptr[T]) Update(fn func(w *Writer[T]) error) (err error) {
	w, err := p.Write()
	if err != nil {
		return err
	}
	defer w.Release()

	ok := false
	defer func() {
		if !ok {
			w.Discard()
		}
	}()

	err = fn(w)
	ok = err == nil
	return err
}

// Valid reports whether a value is currently managed.
func (p *Ptr[T]) Valid() bool {
	c := p.c.Load()
	return c != nil && c.current.Load() != nil
}

// UnsafeGet returns the current value without a borrow. Nothing prevents the
// value from being disposed of while the caller uses it.
func (p *Ptr[T]) UnsafeGet() *T {
	if c := p.c.Load(); c != nil {
		return c.current.Load()
	}
	return nil
}

// Reset releases the managed value as Close does, then takes ownership of v
// in a new container if v is not nil. Observers of the old container expire.
func (p *Ptr[T]) Reset(v *T) {
	var next *control[T]
	if v != nil {
		next = newControl(v, p.dispose, p.opts)
	}
	if c := p.c.Swap(next); c != nil {
		c.releaseStrong()
	}
}

// Close releases the managed value. The value is disposed of once no reader
// can observe it.
func (p *Ptr[T]) Close() { p.Reset(nil) }

// Move transfers ownership to a new Ptr, leaving p empty.
func (p *Ptr[T]) Move() *Ptr[T] {
	q := &Ptr[T]{opts: p.opts, dispose: p.dispose}
	q.c.Store(p.c.Swap(nil))
	return q
}

// Downgrade returns an observer of the container. It is expired from the
// start if p is empty.
func (p *Ptr[T]) Downgrade() *Weak[T] {
	return newWeak(p.c.Load())
}

// Synchronize blocks until every value retired before the call has been
// disposed of, or the context is canceled. Readers are never blocked by it.
func (p *Ptr[T]) Synchronize(ctx context.Context) error {
	c := p.c.Load()
	if c == nil {
		return nil
	}
	return c.rec.synchronize(ctx)
}

// Stats returns the counts of the container. It is the zero Stats for an
// empty Ptr.
func (p *Ptr[T]) Stats() Stats {
	if c := p.c.Load(); c != nil {
		return c.stats()
	}
	return Stats{}
}

// String implements fmt.Stringer.
func (p *Ptr[T]) String() string {
	s := p.Stats()
	return fmt.Sprintf("%T{valid:%v strong:%d weak:%d retired:%d}",
		p, p.Valid(), s.Strong, s.Weak, s.Retired)
}
