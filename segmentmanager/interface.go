package segmentmanager

import "io"

// SegmentManager exposes a single active file to append framed records
// into; rotation to a fresh segment once the active file grows past its
// configured size limit is handled internally.
type SegmentManager interface {
	WriteActive(n int, fn func(w io.Writer)) error
	RotateSegment() error
	Sync() error
	Close() error
}
