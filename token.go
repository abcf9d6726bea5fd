package safeptr

// ticket records a reader in the generation that was current when it was
// acquired. The zero ticket is held by readers under the SingleSlot policy.
type ticket struct {
	ctr *counter
	gen uint64
}

// Release invalidates the ticket and must be called exactly once.
func (t ticket) Release() {
	if t.ctr != nil {
		t.ctr.Release()
	}
}

// Gen reports the generation the ticket was acquired in.
func (t ticket) Gen() uint64 { return t.gen }
