package ftdi

import (
	"github.com/golang/glog"
	"github.com/google/gousb"
)

const vendorFTDI gousb.ID = 0x0403

// Info describes one enumerated FTDI device, for display.
type Info struct {
	VID, PID                      gousb.ID
	Manufacturer, Product, Serial string
}

// List enumerates attached FTDI devices and decodes their descriptive
// strings. Devices whose strings cannot be read are still listed.
func List(ctx *gousb.Context) ([]Info, error) {
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorFTDI
	})
	for _, dev := range devs {
		defer dev.Close()
	}
	if err != nil && len(devs) == 0 {
		return nil, err
	}

	var out []Info
	for _, dev := range devs {
		info := Info{
			VID: dev.Desc.Vendor,
			PID: dev.Desc.Product,
		}
		var serr error
		if info.Manufacturer, serr = dev.Manufacturer(); serr != nil {
			glog.Errorf("Could not read manufacturer string of %s:%s: %v", info.VID, info.PID, serr)
		}
		if info.Product, serr = dev.Product(); serr != nil {
			glog.Errorf("Could not read product string of %s:%s: %v", info.VID, info.PID, serr)
		}
		if info.Serial, serr = dev.SerialNumber(); serr != nil {
			glog.Errorf("Could not read serial string of %s:%s: %v", info.VID, info.PID, serr)
		}
		out = append(out, info)
	}
	return out, nil
}
