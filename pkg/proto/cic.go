package proto

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/n64tools/drive64/pkg/devices"
)

// CIC identifies the boot chip the cartridge emulates. The game will
// not boot unless the emulated CIC matches what it expects.
type CIC uint32

const (
	CIC6101 CIC = iota
	CIC6102
	CIC7101
	CIC7102
	CICx103
	CICx105
	CICx106
	CIC5101
	cicLast
)

// CICTypes maps user-facing CIC chip numbers to protocol ids, with the
// games each covers for help text.
var CICTypes = []struct {
	Num  int
	CIC  CIC
	Desc string
}{
	{6101, CIC6101, "Star Fox"},
	{6102, CIC6102, "most NTSC games"},
	{7101, CIC7101, "most PAL games"},
	{7102, CIC7102, "Lylat Wars"},
	{103, CICx103, "covers 6103 and 7103"},
	{105, CICx105, "covers 6105 and 7105"},
	{106, CICx106, "covers 6106 and 7106"},
	{5101, CIC5101, "Aleck64"},
}

// CICByNumber resolves a CIC by chip number (6102, 103, ...) or, for
// compatibility with the Windows tool, by bare index 0-7.
func CICByNumber(num int) (CIC, error) {
	for i, t := range CICTypes {
		if t.Num == num || (num < int(cicLast) && num == i) {
			return t.CIC, nil
		}
	}
	return 0, fmt.Errorf("invalid CIC %d", num)
}

// Bit 31 of the SETCIC parameter: apply the selection immediately.
const cicApply = 1 << 31

// Revision A hardware cannot change CIC mode.
const restrictedVariant = 'A'

// SetCIC selects the emulated boot chip. The caller must have run the
// handshake first; on revision A hardware the call fails locally and
// no frame is sent. The device sends no response.
func SetCIC(link devices.Link, vi VersionInfo, cic CIC) error {
	if vi.Variant[0] == restrictedVariant {
		return &CapabilityError{Op: "changing CIC mode", Variant: vi.VariantString()}
	}

	glog.V(1).Infof("Selecting CIC mode #%d", cic)
	return sendCommand(link, CmdSetCIC, cicApply|uint32(cic))
}
