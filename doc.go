// package safeptr provides a container for a value that is read far more often than
// it is written.
//
// A Ptr uniquely owns its value. Any number of goroutines may take read borrows
// concurrently without locks: a borrow increments a reader count and loads the
// current pointer exactly once, so it observes a single, unchanging snapshot.
// Writers are serialized by a mutex. A write session captures the prior value,
// builds a candidate, and publishes it with one atomic swap when it is released:
//
//	p := safeptr.New(&Config{Limit: 10})
//	defer p.Close()
//
//	r, _ := p.Read()
//	use(r.Value())
//	r.Release()
//
//	w, _ := p.Write()
//	old, _ := w.Old()
//	next := *old
//	next.Limit++
//	w.Set(next)
//	w.Release()
//
// Writers never mutate a published value, only the pointer to it, so the
// superseded value can still be in use by readers when the swap happens. It is
// retired instead of disposed of, and the disposer passed to NewWithDisposer
// runs once no reader can observe it any more. How that is decided depends on
// the Policy:
//
// Generational, the default, keeps a generation number that every commit bumps
// and shards the reader counts of each generation over cache line padded
// counters. A retired value is tagged with the generation it was superseded
// in and is disposed of once the readers of that generation and every earlier
// one have released. Acquiring and releasing a borrow in the common case reads
// a rarely changing shared pointer and modifies a counter in best-effort
// thread local storage.
//
// SingleSlot keeps one reader count and one retired slot. The last reader out
// disposes of the slot. A commit that finds the slot occupied while readers are
// active disposes of its superseded value immediately, which is unsafe for any
// reader that still holds it. It exists for compatibility and measurement.
//
// A Weak observes the container without keeping the value alive. It may attempt
// the same non-blocking borrows until the owner is closed, after which it
// reports the value as expired.
//
// Slice is the indexed form of Ptr for buffers that are read by position and
// replaced as a whole.
package safeptr
