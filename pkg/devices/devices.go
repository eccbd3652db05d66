// Package devices describes the USB identities of supported 64drive
// hardware and the byte-level link the protocol engine runs over.
package devices

import (
	"github.com/google/gousb"
)

// Description ties a USB identity to a 64drive hardware version.
type Description struct {
	VID, PID  gousb.ID
	HWVersion int
	Name      string
}

// Descriptions lists supported hardware, newest first.
var Descriptions = []Description{
	{
		VID:       0x0403,
		PID:       0x6014,
		HWVersion: 2,
		Name:      "64drive USB device",
	},
	{
		VID:       0x0403,
		PID:       0x6010,
		HWVersion: 1,
		Name:      "64drive USB device A",
	},
}
