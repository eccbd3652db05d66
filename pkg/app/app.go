// Package app owns the lifecycle of one 64drive session: USB context,
// FTDI link setup and the version handshake.
package app

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/google/gousb"
	"github.com/hashicorp/go-multierror"

	"github.com/n64tools/drive64/pkg/devices"
	"github.com/n64tools/drive64/pkg/ftdi"
	"github.com/n64tools/drive64/pkg/proto"
)

// Session is one open 64drive. It exclusively owns the link; protocol
// operations borrow it per call. Not safe for concurrent use: one
// in-flight operation at a time.
type Session struct {
	ctx  *gousb.Context
	Link devices.Link
	Desc *devices.Description

	// Version is populated once by the handshake in New and read-only
	// afterwards.
	Version proto.VersionInfo
}

func newContext() (*gousb.Context, error) {
	resC := make(chan *gousb.Context)
	errC := make(chan error)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errC <- fmt.Errorf("%v", r)
			}
		}()

		resC <- gousb.NewContext()
	}()

	select {
	case err := <-errC:
		return nil, err
	case res := <-resC:
		return res, nil
	}
}

// New finds an attached 64drive, configures the FTDI link and runs the
// version handshake. Open errors for individual device identities are
// accumulated; if nothing matched, they are all returned together.
func New() (*Session, error) {
	ctx, err := newContext()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize USB: %w", err)
	}

	var errs error
	for i := range devices.Descriptions {
		desc := &devices.Descriptions[i]
		dev, err := ftdi.Open(ctx, desc.VID, desc.PID)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		if dev == nil {
			continue
		}

		glog.V(1).Infof("Found 64drive version %d", desc.HWVersion)
		s := &Session{
			ctx:  ctx,
			Link: dev,
			Desc: desc,
		}
		if err := s.init(dev); err != nil {
			dev.Close()
			ctx.Close()
			return nil, err
		}
		return s, nil
	}

	ctx.Close()
	if errs == nil {
		return nil, fmt.Errorf("64drive device not found")
	}
	return nil, errs
}

// init mirrors the 64drive bring-up sequence: reset, synchronous FIFO
// mode on HW2, a generous latency timer, a buffer purge, then the
// handshake.
func (s *Session) init(dev *ftdi.Device) error {
	glog.V(2).Infof("Resetting device")
	if err := dev.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if s.Desc.HWVersion == 2 {
		glog.V(2).Infof("Setting synchronous FIFO mode")
		if err := dev.SetBitmode(0xFF, ftdi.BitmodeReset); err != nil {
			return fmt.Errorf("bitmode reset: %w", err)
		}
		if err := dev.SetBitmode(0xFF, ftdi.BitmodeSyncFF); err != nil {
			return fmt.Errorf("bitmode syncff: %w", err)
		}
	}

	if err := dev.SetLatencyTimer(255); err != nil {
		return fmt.Errorf("latency timer: %w", err)
	}

	glog.V(2).Infof("Purging buffers")
	if err := dev.Purge(); err != nil {
		return fmt.Errorf("purge: %w", err)
	}

	vi, err := proto.GetVersion(dev)
	if err != nil {
		return err
	}
	vi.HWVersion = s.Desc.HWVersion
	s.Version = vi
	return nil
}

// Close releases the link and the USB context.
func (s *Session) Close() {
	if s.Link != nil {
		s.Link.Close()
		s.Link = nil
	}
	if s.ctx != nil {
		s.ctx.Close()
		s.ctx = nil
	}
}
