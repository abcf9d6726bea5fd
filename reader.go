package safeptr

// Reader is a read borrow: a lock-free snapshot of the value that was current
// when it was acquired. The snapshot does not change for the lifetime of the
// borrow regardless of concurrent writers, and it is not disposed of before
// Release is called (see Policy for the SingleSlot exception).
//
// A Reader must be Released exactly once; further calls are no-ops.
type Reader[T any] struct {
	c    *control[T]
	t    ticket
	snap *T
}

func newReader[T any](c *control[T]) Reader[T] {
	t := c.rec.enter()
	return Reader[T]{c: c, t: t, snap: c.current.Load()}
}

// Value returns the snapshot. It must not be modified. It is nil if the owner
// had already released the value when the borrow was acquired.
func (r *Reader[T]) Value() *T { return r.snap }

// Valid reports whether the borrow holds a snapshot.
func (r *Reader[T]) Valid() bool { return r.c != nil && r.snap != nil }

// Release ends the borrow. Superseded values that no other reader can observe
// are disposed of on the way out.
func (r *Reader[T]) Release() {
	if r.c == nil {
		return
	}
	c, t := r.c, r.t
	r.c, r.t, r.snap = nil, ticket{}, nil
	c.rec.exit(t)
}
