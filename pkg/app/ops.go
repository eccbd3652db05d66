package app

import (
	"io"

	"github.com/n64tools/drive64/pkg/proto"
)

// Upload moves data from src into a bank. See proto.Upload.
func (s *Session) Upload(src io.ReadSeeker, size int64, offset uint32, bank proto.Bank, progress proto.Progress) (int64, error) {
	return proto.Upload(s.Link, src, size, offset, bank, progress)
}

// Download moves data out of a bank into dst. See proto.Download.
func (s *Session) Download(dst io.Writer, size int64, offset uint32, bank proto.Bank, progress proto.Progress) (int64, error) {
	return proto.Download(s.Link, dst, size, offset, bank, progress)
}

// SetCIC selects the emulated boot chip, gated on the hardware
// revision learned during the handshake.
func (s *Session) SetCIC(cic proto.CIC) error {
	return proto.SetCIC(s.Link, s.Version, cic)
}
