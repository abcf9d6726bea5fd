package safeptr

// Writer is a write session. It holds the writer lock of its container from
// admission until Release, captures the value that was current at admission,
// and accumulates at most one candidate replacement. Release commits the
// candidate, if any, with a single atomic swap. A session that never sets a
// candidate leaves the container untouched.
//
// A Writer must be Released exactly once; further calls are no-ops.
type Writer[T any] struct {
	c     *control[T]
	old   *T
	local *T
}

// newWriter admits a writer on c. The caller must hold c.mu.
func newWriter[T any](c *control[T]) *Writer[T] {
	return &Writer[T]{c: c, old: c.current.Load()}
}

// Old returns the value that was current when the session was admitted,
// independent of any candidate. It must not be modified.
func (w *Writer[T]) Old() (*T, error) {
	if w.old == nil {
		return nil, ErrNoPriorValue
	}
	return w.old, nil
}

// Set copies v into the candidate.
func (w *Writer[T]) Set(v T) {
	if w.local == nil {
		w.local = new(T)
	}
	*w.local = v
}

// Mut returns the candidate for in place construction, allocating a zero
// value the first time.
func (w *Writer[T]) Mut() *T {
	if w.local == nil {
		w.local = new(T)
	}
	return w.local
}

// Replace makes p the candidate. Ownership of p moves to the container: it
// must not be modified after the session is released. A nil p discards the
// candidate.
func (w *Writer[T]) Replace(p *T) { w.local = p }

// Candidate returns the candidate and whether one has been supplied.
func (w *Writer[T]) Candidate() (*T, bool) { return w.local, w.local != nil }

// Discard drops the candidate so that Release performs no mutation.
func (w *Writer[T]) Discard() { w.local = nil }

// Commit is an alias for Release.
func (w *Writer[T]) Commit() { w.Release() }

// Release ends the session. If a candidate was supplied it becomes the
// current value and the prior value is disposed of as soon as no reader can
// observe it. The writer lock is always released.
func (w *Writer[T]) Release() {
	c := w.c
	if c == nil {
		return
	}
	local := w.local
	w.c, w.old, w.local = nil, nil, nil

	defer c.mu.Unlock()

	if local == nil {
		return
	}

	// the owner released the value while we were admitted through an
	// observer. installing the candidate would resurrect it.
	if c.strong.Load() == 0 {
		c.disposeValue(local)
		return
	}

	c.swap(local)
}
