package safeptr

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// control is the state shared by the owning handle, every observer and every
// borrow of one container.
type control[T any] struct {
	current atomic.Pointer[T]
	rec     reclaimer[T]
	strong  atomic.Int64
	weak    atomic.Int64
	freed   atomic.Bool
	mu      sync.Mutex // admits writers
	dispose func(*T)
	log     *slog.Logger
}

func newControl[T any](v *T, dispose func(*T), o options) *control[T] {
	if dispose == nil {
		dispose = closeValue[T](o.log)
	}
	c := &control[T]{dispose: dispose, log: o.log}
	c.rec = newReclaimer[T](o, c.disposeValue)
	c.strong.Store(1)
	c.current.Store(v)
	return c
}

// closeValue is the default disposer. Values that implement io.Closer are
// closed; anything else is left to the garbage collector.
func closeValue[T any](log *slog.Logger) func(*T) {
	return func(v *T) {
		cl, ok := any(v).(io.Closer)
		if !ok {
			cl, ok = any(*v).(io.Closer)
		}
		if !ok {
			return
		}
		if err := cl.Close(); err != nil {
			log.Warn("closing disposed value", slog.Any("error", err))
		}
	}
}

// disposeValue runs the disposer on v. A panicking disposer is logged so that
// the caller can always finish settling locks and counts.
func (c *control[T]) disposeValue(v *T) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("disposer panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	c.dispose(v)
}

// swap installs v as the current value and hands the prior value to the
// reclaimer. The caller must hold the writer lock.
func (c *control[T]) swap(v *T) {
	if old := c.current.Swap(v); old != nil {
		c.rec.retire(old)
	}
}

// releaseStrong drops the owning reference. The value is released when the
// count reaches zero and the record once the weak count is zero as well.
func (c *control[T]) releaseStrong() {
	if c.strong.Add(-1) != 0 {
		return
	}

	// a writer admitted through an observer may be in flight. wait for it so
	// that the release is ordered after its commit.
	c.mu.Lock()
	c.swap(nil)
	c.mu.Unlock()

	if c.weak.Load() == 0 {
		c.free()
	}
}

// acquireWeak adds an observer reference.
func (c *control[T]) acquireWeak() { c.weak.Add(1) }

// releaseWeak drops an observer reference, freeing the record if it was the
// last reference of any kind.
func (c *control[T]) releaseWeak() {
	if c.weak.Add(-1) == 0 && c.strong.Load() == 0 {
		c.free()
	}
}

// free tears down the record. Both release paths may observe their count at
// zero concurrently, so only the first caller does the work.
func (c *control[T]) free() {
	if !c.freed.CompareAndSwap(false, true) {
		return
	}
	c.rec.reap()
	c.log.Debug("control state released", slog.Int("pending", c.rec.pending()))
}

// alive reports whether the owner still manages a value.
func (c *control[T]) alive() bool {
	return c.strong.Load() > 0 && c.current.Load() != nil
}

func (c *control[T]) stats() Stats {
	return Stats{
		Strong:  c.strong.Load(),
		Weak:    c.weak.Load(),
		Readers: c.rec.readers(),
		Retired: c.rec.pending(),
		Freed:   c.freed.Load(),
	}
}
