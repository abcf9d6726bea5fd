package safeptr

import "context"

// Slice is the indexed form of Ptr: a container for a buffer that readers
// index into and writers replace as a whole. It shares the borrow protocol
// and reclamation of Ptr.
type Slice[E any] struct {
	p *Ptr[[]E]
}

// NewSlice returns a Slice owning buf. A nil buf returns an empty Slice.
// Ownership of buf moves to the container.
func NewSlice[E any](buf []E, opts ...Option) *Slice[E] {
	return NewSliceWithDisposer(buf, nil, opts...)
}

// NewSliceWithDisposer is like NewSlice but calls dispose exactly once for
// every buffer the container owned once no reader can observe it.
func NewSliceWithDisposer[E any](buf []E, dispose func([]E), opts ...Option) *Slice[E] {
	var d func(*[]E)
	if dispose != nil {
		d = func(b *[]E) { dispose(*b) }
	}
	var v *[]E
	if buf != nil {
		v = &buf
	}
	return &Slice[E]{p: NewWithDisposer(v, d, opts...)}
}

// Read acquires a read borrow of the buffer. It never blocks.
func (s *Slice[E]) Read() (SliceReader[E], error) {
	r, err := s.p.Read()
	return SliceReader[E]{r: r}, err
}

// TryRead is like Read but reports unavailability instead of an error.
func (s *Slice[E]) TryRead() (SliceReader[E], bool) {
	r, ok := s.p.TryRead()
	return SliceReader[E]{r: r}, ok
}

// Write admits a write session, blocking until any session in progress is
// released.
func (s *Slice[E]) Write() (*SliceWriter[E], error) {
	w, err := s.p.Write()
	if err != nil {
		return nil, err
	}
	return &SliceWriter[E]{w: w}, nil
}

// TryWrite is like Write but never blocks.
func (s *Slice[E]) TryWrite() (*SliceWriter[E], bool) {
	w, ok := s.p.TryWrite()
	if !ok {
		return nil, false
	}
	return &SliceWriter[E]{w: w}, true
}

// Valid reports whether a buffer is currently managed.
func (s *Slice[E]) Valid() bool { return s.p.Valid() }

// Reset releases the managed buffer and takes ownership of buf if it is not
// nil.
func (s *Slice[E]) Reset(buf []E) {
	if buf == nil {
		s.p.Reset(nil)
		return
	}
	s.p.Reset(&buf)
}

// Close releases the managed buffer.
func (s *Slice[E]) Close() { s.p.Close() }

// Move transfers ownership to a new Slice, leaving s empty.
func (s *Slice[E]) Move() *Slice[E] { return &Slice[E]{p: s.p.Move()} }

// Downgrade returns an observer of the container.
func (s *Slice[E]) Downgrade() *WeakSlice[E] { return &WeakSlice[E]{w: s.p.Downgrade()} }

// Synchronize blocks until every buffer retired before the call has been
// disposed of, or the context is canceled.
func (s *Slice[E]) Synchronize(ctx context.Context) error { return s.p.Synchronize(ctx) }

// Stats returns the counts of the container.
func (s *Slice[E]) Stats() Stats { return s.p.Stats() }

// SliceReader is a read borrow of a buffer.
type SliceReader[E any] struct {
	r Reader[[]E]
}

// Len returns the length of the snapshot.
func (r *SliceReader[E]) Len() int {
	if v := r.r.Value(); v != nil {
		return len(*v)
	}
	return 0
}

// At returns the element at index i of the snapshot. It panics if i is out of
// range, including on a borrow without a snapshot.
func (r *SliceReader[E]) At(i int) E { return r.All()[i] }

// All returns the snapshot. It must not be modified.
func (r *SliceReader[E]) All() []E {
	if v := r.r.Value(); v != nil {
		return *v
	}
	return nil
}

// Valid reports whether the borrow holds a snapshot.
func (r *SliceReader[E]) Valid() bool { return r.r.Valid() }

// Release ends the borrow. Further calls are no-ops.
func (r *SliceReader[E]) Release() { r.r.Release() }

// SliceWriter is a write session on a buffer. The buffer is only ever
// replaced as a whole.
type SliceWriter[E any] struct {
	w *Writer[[]E]
}

// Old returns the buffer that was current when the session was admitted. It
// must not be modified.
func (w *SliceWriter[E]) Old() ([]E, error) {
	v, err := w.w.Old()
	if err != nil {
		return nil, err
	}
	return *v, nil
}

// ReplaceBuffer makes buf the candidate. Ownership of buf moves to the
// container.
func (w *SliceWriter[E]) ReplaceBuffer(buf []E) { w.w.Replace(&buf) }

// Edit returns a candidate that starts as a copy of the prior buffer, for
// changes to individual elements. The copy is made on the first call; later
// calls return the same candidate.
func (w *SliceWriter[E]) Edit() []E {
	if v, ok := w.w.Candidate(); ok {
		return *v
	}
	var buf []E
	if old, err := w.w.Old(); err == nil {
		buf = append(make([]E, 0, len(*old)), *old...)
	}
	w.w.Replace(&buf)
	return buf
}

// Candidate returns the candidate buffer and whether one has been supplied.
func (w *SliceWriter[E]) Candidate() ([]E, bool) {
	v, ok := w.w.Candidate()
	if !ok {
		return nil, false
	}
	return *v, true
}

// Discard drops the candidate so that Release performs no mutation.
func (w *SliceWriter[E]) Discard() { w.w.Discard() }

// Release ends the session, committing the candidate if there is one.
func (w *SliceWriter[E]) Release() { w.w.Release() }

// WeakSlice observes a Slice without keeping its buffer alive.
type WeakSlice[E any] struct {
	w *Weak[[]E]
}

// Clone returns another observer of the same container.
func (w *WeakSlice[E]) Clone() *WeakSlice[E] { return &WeakSlice[E]{w: w.w.Clone()} }

// Release drops the observer.
func (w *WeakSlice[E]) Release() { w.w.Release() }

// Expired reports whether the owner has released the buffer.
func (w *WeakSlice[E]) Expired() bool { return w.w.Expired() }

// TryRead acquires a read borrow if the buffer is still alive.
func (w *WeakSlice[E]) TryRead() (SliceReader[E], bool) {
	r, ok := w.w.TryRead()
	return SliceReader[E]{r: r}, ok
}

// TryWrite admits a write session if the buffer is still alive and no other
// session is in progress.
func (w *WeakSlice[E]) TryWrite() (*SliceWriter[E], bool) {
	sw, ok := w.w.TryWrite()
	if !ok {
		return nil, false
	}
	return &SliceWriter[E]{w: sw}, true
}
