package safeptr

import "sync/atomic"

// counter is one shard of the reader count for a generation.
type counter struct {
	count atomic.Int32
}

// Acquire records a reader on the shard.
func (c *counter) Acquire() { c.count.Add(1) }

// Release removes a reader from the shard.
func (c *counter) Release() { c.count.Add(-1) }

// Zero returns if no reader is recorded on the shard.
func (c *counter) Zero() bool { return c.count.Load() == 0 }
