package safeptr

import "github.com/zeebo/errs"

// Error is the class of all errors returned by this package.
var Error = errs.Class("safeptr")

var (
	// ErrEmptyHandle is returned by blocking accessors on a handle that does
	// not manage a value.
	ErrEmptyHandle = Error.New("empty handle")

	// ErrNoPriorValue is returned by Writer.Old when the session was admitted
	// with nothing to capture.
	ErrNoPriorValue = Error.New("no prior value")

	// ErrExpired is returned by observer accessors once the owner has released
	// the value.
	ErrExpired = Error.New("expired")
)
