package safeptr

// Stats is a point in time view of the counts kept for a container. The fields
// are read independently, so they may not be mutually consistent while the
// container is in use.
type Stats struct {
	Strong  int64 // owning handles
	Weak    int64 // observer handles
	Readers int64 // active read borrows (current generation only under Generational)
	Retired int   // superseded values not yet disposed of
	Freed   bool  // both counts reached zero
}
