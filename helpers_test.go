package safeptr

import (
	"sync"
	"sync/atomic"
)

// payload is a test value that records when it has been disposed of.
type payload struct {
	n    int
	dead atomic.Bool
}

func newPayload(n int) *payload { return &payload{n: n} }

// disposals counts calls to a disposer per value.
type disposals[T any] struct {
	mu    sync.Mutex
	count map[*T]int
	order []*T
}

func newDisposals[T any]() *disposals[T] {
	return &disposals[T]{count: make(map[*T]int)}
}

func (d *disposals[T]) dispose(v *T) {
	if p, ok := any(v).(*payload); ok {
		p.dead.Store(true)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count[v]++
	d.order = append(d.order, v)
}

func (d *disposals[T]) times(v *T) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count[v]
}

func (d *disposals[T]) total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

func (d *disposals[T]) all() []*T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*T(nil), d.order...)
}

// commit runs one write session that sets v.
func commit[T any](p *Ptr[T], v *T) {
	w, err := p.Write()
	if err != nil {
		panic(err)
	}
	w.Replace(v)
	w.Release()
}

var policies = []Policy{Generational, SingleSlot}
