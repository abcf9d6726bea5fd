package safeptr

// grace represents a generation of the tracker that has been Incremented
// past. Once Done reports true, no ticket with the same generation exists and
// none can be acquired.
type grace struct {
	page *counterPage
	gen  uint64
	pgen uint64
}

// Gen returns the generation the grace period is associated to.
func (g grace) Gen() uint64 { return g.gen }

// Done reports if every ticket of the generation has been Released. It never
// blocks on readers.
func (g grace) Done() bool {
	// hold a read lock while looking at the page so that it cannot enter the
	// pool underneath us.
	g.page.mu.RLock()

	// if pgen doesn't match, an earlier Done already observed the end of the
	// grace period and the page may even be in the pool again.
	if g.page.pgen.Load() != g.pgen {
		g.page.mu.RUnlock()
		return true
	}
	for i := range g.page.ctrs {
		if !g.page.ctrs[i].ctr.Zero() {
			g.page.mu.RUnlock()
			return false
		}
	}
	g.page.mu.RUnlock()

	// readers that increment a counter on this page from now on will notice the
	// page is no longer current and release immediately, so zero is final. the
	// first to bump pgen owns putting the page back into the pool once every
	// other Done has dropped its read lock.
	if g.page.pgen.CompareAndSwap(g.pgen, g.pgen+1) {
		g.page.mu.Lock()
		g.page.mu.Unlock()

		g.page.Release()
	}

	return true
}
