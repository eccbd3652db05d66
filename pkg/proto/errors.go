package proto

import (
	"errors"
	"fmt"
)

// ErrTooManyParams reports a command that does not fit the fixed frame
// buffer. This is a local caller bug, never a device condition.
var ErrTooManyParams = errors.New("too many parameters for command frame")

// ErrLinkStalled reports a bulk operation that completed without
// moving any bytes. It is retried internally before being surfaced
// inside a TransferError.
var ErrLinkStalled = errors.New("link made no progress")

// CommunicationError reports a handshake whose magic word never
// matched. The protocol has no software reset, so the only recovery is
// physical.
type CommunicationError struct {
	Attempts  int
	LastMagic uint32
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication failure: bad magic 0x%08X after %d attempts (expected 0x%08X); unplug the USB cable and power-cycle the console, then try again",
		e.LastMagic, e.Attempts, Magic)
}

// CapabilityError reports an operation the attached hardware revision
// cannot perform. Nothing was sent to the device.
type CapabilityError struct {
	Op      string
	Variant string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("hardware revision %s does not support %s", e.Variant, e.Op)
}

// TransferError reports a bulk transfer aborted mid-flight. Moved is
// the number of bytes successfully transferred before the failure, so
// a caller can resume from its starting offset plus Moved.
type TransferError struct {
	Cmd   Command
	Moved int64
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer (command 0x%02X) failed after %d bytes: %v", uint8(e.Cmd), e.Moved, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
