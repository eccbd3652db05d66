package devices

import (
	"errors"
)

// Link is the byte-level pipe to an attached 64drive. Protocol
// operations borrow it for the duration of one call and never retain
// it. A Link is not reentrant: one in-flight operation at a time, the
// wire has no framing to separate interleaved exchanges.
type Link interface {
	// Write pushes p over the bulk out endpoint and returns the number
	// of bytes the device accepted, which may be short.
	Write(p []byte) (int, error)

	// Read fills p from the bulk in endpoint and returns the number of
	// bytes produced, which may be short.
	Read(p []byte) (int, error)

	// Purge drops buffered data on both directions of the link.
	Purge() error

	// SetChunkSize tells the link the transfer size to use for its own
	// internal bulk chunking.
	SetChunkSize(n int) error

	// Close releases the link. No other methods may be called
	// afterwards.
	Close() error
}

// ErrTimeout is returned by Link implementations in place of their
// transport-specific timeout error.
var ErrTimeout = errors.New("USB timeout")
