package safeptr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zeebo/assert"
)

func TestReclaimNoReaders(t *testing.T) {
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			d := newDisposals[payload]()
			v0, v1 := newPayload(0), newPayload(1)
			p := NewWithDisposer(v0, d.dispose, WithPolicy(policy))

			commit(p, v1)
			assert.Equal(t, d.times(v0), 1)
			assert.Equal(t, p.Stats().Retired, 0)

			p.Close()
			assert.Equal(t, d.times(v1), 1)
			assert.Equal(t, d.total(), 2)
		})
	}
}

func TestReclaimDeferredToLastReader(t *testing.T) {
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			d := newDisposals[payload]()
			v0, v1 := newPayload(0), newPayload(1)
			p := NewWithDisposer(v0, d.dispose, WithPolicy(policy))
			defer p.Close()

			r1, _ := p.Read()
			r2, _ := p.Read()

			commit(p, v1)
			assert.Equal(t, d.times(v0), 0)
			assert.Equal(t, p.Stats().Retired, 1)
			assert.Equal(t, r1.Value().n, 0)

			r1.Release()
			assert.Equal(t, d.times(v0), 0)
			assert.Equal(t, r2.Value().n, 0)

			r2.Release()
			assert.Equal(t, d.times(v0), 1)
			assert.Equal(t, p.Stats().Retired, 0)
		})
	}
}

// a reader holds v0 while two commits happen. the generational policy must
// keep v0 alive until the reader releases.
func TestReclaimTwoCommitsUnderReaderGenerational(t *testing.T) {
	d := newDisposals[payload]()
	v0, v1, v2 := newPayload(0), newPayload(1), newPayload(2)
	p := NewWithDisposer(v0, d.dispose)

	r, _ := p.Read()
	commit(p, v1)
	commit(p, v2)

	assert.That(t, !r.Value().dead.Load())
	assert.Equal(t, r.Value().n, 0)
	assert.Equal(t, d.times(v0), 0)
	assert.Equal(t, p.Stats().Retired, 2)

	// a reader of the newest value does not hold up older values.
	r2, _ := p.Read()
	assert.Equal(t, r2.Value().n, 2)

	r.Release()
	assert.DeepEqual(t, d.all(), []*payload{v0, v1})

	r2.Release()
	p.Close()
	assert.DeepEqual(t, d.all(), []*payload{v0, v1, v2})
}

// a reader that observed v1 while another reader kept the retired slot busy
// has v1 disposed of underneath it by the next commit.
func TestReclaimTwoCommitsUnderReaderSingleSlot(t *testing.T) {
	d := newDisposals[payload]()
	v0, v1, v2 := newPayload(0), newPayload(1), newPayload(2)
	p := NewWithDisposer(v0, d.dispose, WithPolicy(SingleSlot))

	r0, _ := p.Read()
	commit(p, v1) // v0 takes the retired slot
	r1, _ := p.Read()
	assert.Equal(t, r1.Value().n, 1)

	commit(p, v2) // slot occupied: v1 is disposed of immediately
	assert.That(t, r1.Value().dead.Load())
	assert.Equal(t, d.times(v1), 1)
	assert.Equal(t, d.times(v0), 0)

	r0.Release()
	r1.Release()
	assert.Equal(t, d.times(v0), 1)

	p.Close()
	assert.Equal(t, d.times(v2), 1)
	assert.Equal(t, d.total(), 3)
}

func TestReclaimCloseWithActiveReader(t *testing.T) {
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			d := newDisposals[payload]()
			v0 := newPayload(0)
			p := NewWithDisposer(v0, d.dispose, WithPolicy(policy))

			r, _ := p.Read()
			p.Close()
			assert.That(t, !p.Valid())
			assert.Equal(t, d.times(v0), 0)
			assert.Equal(t, r.Value().n, 0)

			r.Release()
			assert.Equal(t, d.times(v0), 1)
		})
	}
}

func TestReclaimLastWeakReleaseWithActiveReader(t *testing.T) {
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			d := newDisposals[payload]()
			v0 := newPayload(0)
			p := NewWithDisposer(v0, d.dispose, WithPolicy(policy))
			weak := p.Downgrade()
			c := weak.c

			r, _ := p.Read()
			p.Close()
			assert.That(t, !c.freed.Load())

			// the record is torn down while the borrow is still out.
			weak.Release()
			assert.That(t, c.freed.Load())
			assert.That(t, !r.Value().dead.Load())
			assert.Equal(t, d.times(v0), 0)

			r.Release()
			assert.Equal(t, d.times(v0), 1)
			assert.Equal(t, d.total(), 1)
		})
	}
}

func TestSynchronize(t *testing.T) {
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			d := newDisposals[payload]()
			v0, v1 := newPayload(0), newPayload(1)
			p := NewWithDisposer(v0, d.dispose, WithPolicy(policy))
			defer p.Close()

			assert.NoError(t, p.Synchronize(context.Background()))

			r, _ := p.Read()
			commit(p, v1)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
			defer cancel()
			err := p.Synchronize(ctx)
			assert.That(t, errors.Is(err, context.DeadlineExceeded))
			assert.That(t, Error.Has(err))

			done := make(chan error, 1)
			go func() { done <- p.Synchronize(context.Background()) }()
			r.Release()
			assert.NoError(t, <-done)
			assert.Equal(t, d.times(v0), 1)
		})
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, Generational.String(), "generational")
	assert.Equal(t, SingleSlot.String(), "single-slot")
	assert.Equal(t, Policy(7).String(), "unknown")
}
