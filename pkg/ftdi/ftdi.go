// Package ftdi drives the FT232H/FT2232H bridge chip on a 64drive
// through plain libusb (via gousb), without the vendor driver: the
// handful of vendor control requests needed for reset, bitmode,
// latency and purge, plus bulk reads and writes on the FIFO endpoints.
package ftdi

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/google/gousb"

	"github.com/n64tools/drive64/pkg/devices"
)

// FTDI vendor control requests, as issued by libftdi.
const (
	reqReset           = 0x00
	reqSetLatencyTimer = 0x09
	reqSetBitmode      = 0x0B

	resetSIO     = 0
	resetPurgeRX = 1
	resetPurgeTX = 2
)

// Bitmodes for SetBitmode.
const (
	BitmodeReset  uint8 = 0x00
	BitmodeSyncFF uint8 = 0x40 // synchronous FIFO, HW2 only
)

// bmRequestType for all FTDI requests: vendor, device, host-to-device.
const reqTypeOut uint8 = 0x40

const defaultChunkSize = 4096

// Device is one open FTDI link. It implements devices.Link.
type Device struct {
	usb  *gousb.Device
	done func()
	intf *gousb.Interface
	in   *gousb.InEndpoint
	out  *gousb.OutEndpoint

	// FTDI channel index for control requests, 1-based. The 64drive
	// uses the first channel on both chip generations.
	index uint16

	maxPacket int
	chunkSize int
}

// Open claims the FTDI device with the given identity. Returns (nil,
// nil) if no such device is attached.
func Open(ctx *gousb.Context, vid, pid gousb.ID) (*Device, error) {
	usb, err := ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("open %s:%s: %w", vid, pid, err)
	}
	if usb == nil {
		return nil, nil
	}

	d := &Device{
		usb:       usb,
		index:     1,
		chunkSize: defaultChunkSize,
	}
	if err := d.prepare(); err != nil {
		usb.Close()
		return nil, fmt.Errorf("prepare %s:%s: %w", vid, pid, err)
	}
	return d, nil
}

func (d *Device) prepare() error {
	if err := d.usb.SetAutoDetach(true); err != nil {
		return err
	}
	intf, done, err := d.usb.DefaultInterface()
	if err != nil {
		return err
	}
	d.intf = intf
	d.done = done

	for _, ep := range intf.Setting.Endpoints {
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			d.in, err = intf.InEndpoint(ep.Number)
		case gousb.EndpointDirectionOut:
			d.out, err = intf.OutEndpoint(ep.Number)
		}
		if err != nil {
			return err
		}
	}
	if d.in == nil || d.out == nil {
		return fmt.Errorf("no bulk endpoint pair on interface %d", intf.Setting.Number)
	}
	d.maxPacket = d.in.Desc.MaxPacketSize
	glog.V(2).Infof("FTDI endpoints: in %d out %d, max packet %d",
		d.in.Desc.Number, d.out.Desc.Number, d.maxPacket)
	return nil
}

func (d *Device) control(request uint8, value uint16) error {
	if _, err := d.usb.Control(reqTypeOut, request, value, d.index, nil); err != nil {
		return mapErr(err)
	}
	return nil
}

// Reset returns the FTDI engine to its power-on state.
func (d *Device) Reset() error {
	return d.control(reqReset, resetSIO)
}

// SetBitmode selects the pin mode of the chip. The 64drive HW2 runs
// the FIFO in synchronous mode with all pins assigned (mask 0xFF).
func (d *Device) SetBitmode(mask, mode uint8) error {
	return d.control(reqSetBitmode, uint16(mode)<<8|uint16(mask))
}

// SetLatencyTimer sets the buffer flush interval in milliseconds
// (1-255).
func (d *Device) SetLatencyTimer(ms uint8) error {
	if ms < 1 {
		return fmt.Errorf("latency timer %d out of range", ms)
	}
	return d.control(reqSetLatencyTimer, uint16(ms))
}

// Purge drops buffered data in both directions.
func (d *Device) Purge() error {
	if err := d.control(reqReset, resetPurgeRX); err != nil {
		return err
	}
	return d.control(reqReset, resetPurgeTX)
}

// SetChunkSize bounds the size of individual bulk calls made by Read
// and Write.
func (d *Device) SetChunkSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("chunk size %d out of range", n)
	}
	d.chunkSize = n
	return nil
}

// Write pushes p over the bulk out endpoint in chunkSize slices.
func (d *Device) Write(p []byte) (int, error) {
	var total int
	for total < len(p) {
		end := min(total+d.chunkSize, len(p))
		n, err := d.out.Write(p[total:end])
		total += n
		if err != nil {
			return total, mapErr(err)
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// Read fills p from the bulk in endpoint. The chip prepends two modem
// status bytes to every max-packet of data; they are stripped here the
// way libftdi's ftdi_read_data strips them, so callers see payload
// only.
func (d *Device) Read(p []byte) (int, error) {
	want := min(len(p), d.chunkSize)
	if want == 0 {
		return 0, nil
	}
	payloadPer := d.maxPacket - 2
	packets := (want + payloadPer - 1) / payloadPer

	raw := make([]byte, packets*d.maxPacket)
	n, err := d.in.Read(raw)

	var total int
	for off := 0; off < n && total < want; off += d.maxPacket {
		end := min(off+d.maxPacket, n)
		if end-off <= 2 {
			continue
		}
		total += copy(p[total:want], raw[off+2:end])
	}
	if err != nil {
		return total, mapErr(err)
	}
	return total, nil
}

// Close releases the interface and the underlying USB device.
func (d *Device) Close() error {
	if d.done != nil {
		d.done()
		d.done = nil
	}
	return d.usb.Close()
}

func mapErr(err error) error {
	if err == gousb.ErrorTimeout {
		return devices.ErrTimeout
	}
	return err
}
