package proto

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/n64tools/drive64/pkg/devices"
)

// VersionInfo identifies the attached cartridge hardware. Variant is
// the 3-character revision code from the GETVER response; HWVersion (1
// or 2) comes from USB enumeration, not from the response, and is
// filled in by the session.
type VersionInfo struct {
	Variant   [3]byte
	HWVersion int
}

// VariantString returns the revision code as text, e.g. "B2X".
func (v VersionInfo) VariantString() string {
	return string(v.Variant[:])
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("HW%d rev %s", v.HWVersion, v.VariantString())
}

const (
	versionRespLen  = 64
	getVersionTries = 4
)

var errBadMagic = errors.New("bad magic in version response")

// GetVersion runs the liveness handshake: send GETVER, read the fixed
// 64-byte identity block, and require the magic word in its second
// big-endian word. The whole send/receive cycle is retried up to 4
// times with a buffer purge in between; a persistent mismatch means
// the link is wedged and only a power cycle recovers it.
func GetVersion(link devices.Link) (VersionInfo, error) {
	var vi VersionInfo
	var lastMagic uint32
	resp := make([]byte, versionRespLen)

	err := attempt(getVersionTries, func() { link.Purge() }, func() error {
		if err := sendCommand(link, CmdGetVer); err != nil {
			return err
		}
		n, err := link.Read(resp)
		if err != nil {
			return fmt.Errorf("version read: %w", err)
		}
		if n < 8 {
			return fmt.Errorf("short version response (%d bytes)", n)
		}
		magic := binary.BigEndian.Uint32(resp[4:8])
		if magic != Magic {
			lastMagic = magic
			glog.V(1).Infof("Incorrect magic 0x%08X, expected 0x%08X", magic, Magic)
			return errBadMagic
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errBadMagic) {
			return vi, &CommunicationError{Attempts: getVersionTries, LastMagic: lastMagic}
		}
		return vi, err
	}

	copy(vi.Variant[:], resp[:3])
	glog.V(1).Infof("Hardware revision: %s", vi.VariantString())
	return vi, nil
}
