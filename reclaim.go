package safeptr

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// reclaimer decides when a value that is no longer current may be disposed
// of. enter and exit bracket every read borrow; retire is called by the holder
// of the writer lock with the value it just swapped out of current.
type reclaimer[T any] interface {
	enter() ticket
	exit(t ticket)
	retire(v *T)
	reap()
	pending() int
	readers() int64
	synchronize(ctx context.Context) error
}

func newReclaimer[T any](o options, dispose func(*T)) reclaimer[T] {
	if o.policy == SingleSlot {
		return &slotReclaimer[T]{dispose: dispose, log: o.log}
	}
	return &generational[T]{dispose: dispose, log: o.log, q: queue.New()}
}

//
// single retired slot
//

// slotReclaimer holds at most one retired value. It is released by the
// reader that brings the reader count to zero.
type slotReclaimer[T any] struct {
	n       atomic.Int64
	retired atomic.Pointer[T]
	dispose func(*T)
	log     *slog.Logger
}

func (s *slotReclaimer[T]) enter() ticket {
	s.n.Add(1)
	return ticket{}
}

func (s *slotReclaimer[T]) exit(ticket) {
	if s.n.Add(-1) == 0 {
		s.reap()
	}
}

func (s *slotReclaimer[T]) retire(v *T) {
	if s.n.Load() == 0 {
		s.dispose(v)
		return
	}
	if s.retired.CompareAndSwap(nil, v) {
		s.log.Debug("deferred disposal of retired value")
		return
	}
	s.log.Warn("retired slot occupied; disposing superseded value while readers are active",
		slog.Int64("readers", s.n.Load()))
	s.dispose(v)
}

// reap disposes of the retired slot if no reader is active. A reader that
// is still active drains the slot itself when it brings the count to zero.
func (s *slotReclaimer[T]) reap() {
	if s.n.Load() != 0 {
		return
	}
	if v := s.retired.Swap(nil); v != nil {
		s.dispose(v)
	}
}

func (s *slotReclaimer[T]) pending() int {
	if s.retired.Load() != nil {
		return 1
	}
	return 0
}

func (s *slotReclaimer[T]) readers() int64 { return s.n.Load() }

func (s *slotReclaimer[T]) synchronize(ctx context.Context) error {
	target := s.retired.Load()
	if target == nil {
		return nil
	}
	return poll(ctx, func() bool {
		s.reap()
		return s.retired.Load() != target
	})
}

//
// generations
//

// retiredEntry is a value waiting for the readers of its generation.
type retiredEntry[T any] struct {
	v     *T
	grace grace
}

// generational tags every retired value with the grace period of the
// generation it was current in and disposes of values in retirement order
// once their grace period is over. Readers of an older generation hold up
// every later entry, so a value is never disposed of while a reader that
// could have loaded it is still active.
type generational[T any] struct {
	tr      tracker
	dispose func(*T)
	log     *slog.Logger

	mu       sync.Mutex   // guards q
	q        *queue.Queue // of retiredEntry[T]
	queued   atomic.Int64
	kick     atomic.Bool
	retired  atomic.Uint64 // entries ever enqueued
	disposed atomic.Uint64 // entries ever disposed
}

func (g *generational[T]) enter() ticket { return g.tr.Acquire() }

func (g *generational[T]) exit(t ticket) {
	t.Release()
	if g.queued.Load() > 0 {
		g.reap()
	}
}

func (g *generational[T]) retire(v *T) {
	gp := g.tr.Increment()

	g.mu.Lock()
	g.q.Add(retiredEntry[T]{v: v, grace: gp})
	g.queued.Store(int64(g.q.Length()))
	g.retired.Add(1)
	g.mu.Unlock()

	g.reap()
	if g.queued.Load() > 0 {
		g.log.Debug("deferred disposal of retired value",
			slog.Uint64("gen", gp.Gen()),
			slog.Int64("pending", g.queued.Load()))
	}
}

// reap disposes of every entry at the front of the queue whose grace period
// is over. It never blocks: if another caller is reaping, that caller is
// asked to look again before it returns.
func (g *generational[T]) reap() {
	for g.queued.Load() > 0 {
		g.kick.Store(true)
		if !g.mu.TryLock() {
			return
		}
		g.kick.Store(false)

		var ready []*T
		for g.q.Length() > 0 {
			ent := g.q.Peek().(retiredEntry[T])
			if !ent.grace.Done() {
				break
			}
			g.q.Remove()
			ready = append(ready, ent.v)
		}
		g.queued.Store(int64(g.q.Length()))
		g.mu.Unlock()

		for _, v := range ready {
			g.dispose(v)
		}
		g.disposed.Add(uint64(len(ready)))

		if !g.kick.Load() {
			return
		}
	}
}

func (g *generational[T]) pending() int { return int(g.queued.Load()) }

func (g *generational[T]) readers() int64 {
	page := g.tr.page.Load()
	if page == nil {
		return 0
	}
	return page.readers()
}

func (g *generational[T]) synchronize(ctx context.Context) error {
	target := g.retired.Load()
	return poll(ctx, func() bool {
		g.reap()
		return g.disposed.Load() >= target
	})
}

// poll calls done with an increasing backoff until it returns true or the
// context is canceled.
func poll(ctx context.Context, done func() bool) error {
	const maxBackoff = 10 * time.Millisecond

	backoff := 10 * time.Microsecond
	for !done() {
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Error.Wrap(ctx.Err())
		case <-timer.C:
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil
}
