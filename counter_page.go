package safeptr

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// numCounters is the number of padded counters per page to shard readers over.
const numCounters = 32

// counterPageHeader contains the metadata in the page before all of the counters.
type counterPageHeader struct {
	// the generation represented by the page
	gen uint64
	// the generation of this page through the page pool. it is bumped when the
	// grace period of the page is observed to be over so that the page enters
	// the pool exactly once per trip through tracker.Increment.
	pgen atomic.Uint64
	// this rwmutex lets grace.Done ensure that the page only enters the pool
	// when no other check of it is active.
	mu sync.RWMutex
}

// counterPage keeps track of a generation and a set of counters tracking how many
// tickets exist for the generation. Every counter sits on its own cache line.
type counterPage struct {
	counterPageHeader
	_    cpu.CacheLinePad
	ctrs [numCounters]struct {
		ctr counter
		_   cpu.CacheLinePad
	}
}

// pagePool is a pool for the counterPages.
var pagePool = sync.Pool{New: func() interface{} { return new(counterPage) }}

// newCounterPage returns an allocated counterPage for the generation. It may be
// reused from a pool.
func newCounterPage(gen uint64) *counterPage {
	page, _ := pagePool.Get().(*counterPage)
	page.gen = gen
	return page
}

// Release returns the counterPage to the pool for newCounterPage. It is important
// to not perform any operations on the counter page after it has been Released.
func (p *counterPage) Release() { pagePool.Put(p) }

// readers sums the shards of the page. The result is only a hint while tickets
// are being acquired or released concurrently.
func (p *counterPage) readers() (n int64) {
	for i := range p.ctrs {
		n += int64(p.ctrs[i].ctr.count.Load())
	}
	return n
}
