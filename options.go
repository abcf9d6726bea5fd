package safeptr

import (
	"io"
	"log/slog"
)

// Policy selects how values superseded by a commit are reclaimed while
// readers may still hold them.
type Policy int

const (
	// Generational tags every retired value with a grace period and disposes
	// of it only after every reader that could observe it has released. Any
	// number of values may be pending at once.
	Generational Policy = iota

	// SingleSlot keeps at most one retired value and a single reader count.
	// If a second commit happens while a reader is still active and the slot
	// is occupied, the superseded value is disposed of immediately even if a
	// long lived reader still holds it.
	SingleSlot
)

// String returns the name of the policy.
func (p Policy) String() string {
	switch p {
	case Generational:
		return "generational"
	case SingleSlot:
		return "single-slot"
	default:
		return "unknown"
	}
}

type options struct {
	policy Policy
	log    *slog.Logger
}

// Option configures a container at construction.
type Option func(*options)

// WithPolicy sets the reclamation policy. The default is Generational.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger used for reclamation events. The default
// discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newOptions(opts []Option) options {
	o := options{policy: Generational, log: discardLogger}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
