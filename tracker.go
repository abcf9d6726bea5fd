package safeptr

import (
	"sync"
	"sync/atomic"
)

var thread uint64
var threadPool = sync.Pool{
	New: func() interface{} { return atomic.AddUint64(&thread, 1) },
}

// tracker hands out tickets that come with a monotonically increasing
// generation number. It does so in a scalable way, and optimizes for the case
// where reads vastly outnumber changes to the generation. The zero value is
// safe to use.
type tracker struct {
	page atomic.Pointer[counterPage]
	mu   sync.Mutex // serializes Increment
}

// load returns the current page, allocating it if there is none yet.
func (t *tracker) load() *counterPage {
	page := t.page.Load()
	if page == nil {
		page = newCounterPage(0)
		if !t.page.CompareAndSwap(nil, page) {
			page.Release()
			page = t.page.Load()
		}
	}
	return page
}

// Acquire returns a ticket for the current generation. It must be Released
// before the grace period of the ticket's generation can end. It is safe to be
// called concurrently and never blocks.
func (t *tracker) Acquire() ticket {
	// determine which counter we're going to hold
	pi := threadPool.Get()
	threadPool.Put(pi)
	p, _ := pi.(uint64)

	page := t.load()
	for {
		ctr := &page.ctrs[p%numCounters].ctr
		ctr.Acquire()

		// double check that the generation didn't change to ensure that any
		// grace period for the page is aware of our outstanding ticket.
		pageNext := t.page.Load()
		if page == pageNext {
			return ticket{ctr: ctr, gen: page.gen}
		}

		// we lost the race, and can't safely return a ticket. try again with
		// the current generation.
		ctr.Release()
		page = pageNext
	}
}

// Increment bumps the generation of the tracker for future Acquire calls and
// returns the grace period of every ticket acquired in the generation it
// replaced. It is safe to be called concurrently.
func (t *tracker) Increment() grace {
	t.mu.Lock()

	// Acquire may be lazily allocating the first page without the mutex, so
	// load goes through a CAS.
	page := t.load()

	// no need to CAS because we know we're the only possible writer to the page
	// variable once it is non-nil, and the mutex serializes Increment.
	t.page.Store(newCounterPage(page.gen + 1))

	t.mu.Unlock()

	return grace{
		page: page,
		gen:  page.gen,
		pgen: page.pgen.Load(),
	}
}

// Gen returns the current generation.
func (t *tracker) Gen() uint64 { return t.load().gen }
