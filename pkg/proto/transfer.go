package proto

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"golang.org/x/exp/constraints"

	"github.com/n64tools/drive64/pkg/devices"
)

// Progress is called after every completed chunk with the running byte
// total and the final size of the transfer. A nil Progress is silent.
type Progress func(moved, total int64)

const (
	chunkUnit = 128 * 1024

	// DefaultDumpSize bounds a download when the caller gives no size.
	// The protocol has no bank-capacity query, so this is an upper
	// bound, not the true bank size.
	DefaultDumpSize = 256 * 1024 * 1024

	transferTries      = 5
	transferRetryDelay = 10 * time.Millisecond
)

// chunkBytes picks the bulk chunk size for a transfer of size bytes:
// 32 units above 16 MiB, 16 above 2 MiB, 4 otherwise, one unit being
// 128 KiB, clamped to size. Computed once per transfer, never per
// chunk.
func chunkBytes(size int64) int64 {
	var units int64
	switch {
	case size > 16*1024*1024:
		units = 32
	case size > 2*1024*1024:
		units = 16
	default:
		units = 4
	}
	return min(units*chunkUnit, size)
}

// Percent reports moved as a whole percentage of total.
func Percent[T constraints.Integer](moved, total T) int {
	if total == 0 {
		return 100
	}
	return int(int64(moved) * 100 / int64(total))
}

// packExtent packs a chunk byte count and a bank id into the second
// LOADRAM/DUMPRAM parameter: low 24 bits carry the count, high 8 bits
// the bank.
func packExtent(chunk int64, bank Bank) uint32 {
	return uint32(chunk)&0xFFFFFF | uint32(bank)<<24
}

// Upload moves size bytes from src into the given bank starting at
// offset, returning the number of bytes actually moved. A negative
// size means "the rest of src" measured from its current position
// (which is restored before the transfer begins). On a mid-transfer
// failure the returned TransferError carries the bytes moved so far.
func Upload(link devices.Link, src io.ReadSeeker, size int64, offset uint32, bank Bank, progress Progress) (int64, error) {
	if size < 0 {
		var err error
		size, err = remaining(src)
		if err != nil {
			return 0, fmt.Errorf("sizing source: %w", err)
		}
	}
	if size == 0 {
		return 0, nil
	}

	chunk := chunkBytes(size)
	glog.V(2).Infof("Chunk size: %d bytes", chunk)
	if err := link.SetChunkSize(int(chunk)); err != nil {
		return 0, fmt.Errorf("set chunk size: %w", err)
	}

	glog.V(1).Infof("Uploading %d KiB to offset 0x%06X, bank %s", size/1024, offset, bank)

	buf := make([]byte, chunk)
	var moved int64
	for moved < size {
		want := min(chunk, size-moved)
		if _, err := io.ReadFull(src, buf[:want]); err != nil {
			return moved, fmt.Errorf("reading source after %d bytes: %w", moved, err)
		}

		if err := sendCommand(link, CmdLoadRAM, offset, packExtent(chunk, bank)); err != nil {
			return moved, err
		}
		n, err := moveChunk(link, func() (int, error) { return link.Write(buf[:want]) })
		if err != nil {
			return moved, &TransferError{Cmd: CmdLoadRAM, Moved: moved, Err: err}
		}

		// A short bulk write consumed fewer source bytes than read;
		// rewind so the next chunk starts where the device stopped.
		if int64(n) < want {
			if _, err := src.Seek(int64(n)-want, io.SeekCurrent); err != nil {
				return moved, fmt.Errorf("rewinding source: %w", err)
			}
		}

		offset += uint32(n)
		moved += int64(n)
		if progress != nil {
			progress(moved, size)
		}
	}
	return moved, nil
}

// Download moves size bytes out of the given bank starting at offset
// into dst. A negative size falls back to DefaultDumpSize because the
// device cannot report a bank's capacity. Position tracking and error
// reporting mirror Upload.
func Download(link devices.Link, dst io.Writer, size int64, offset uint32, bank Bank, progress Progress) (int64, error) {
	if size < 0 {
		size = DefaultDumpSize
	}
	if size == 0 {
		return 0, nil
	}

	chunk := chunkBytes(size)
	glog.V(2).Infof("Chunk size: %d bytes", chunk)
	if err := link.SetChunkSize(int(chunk)); err != nil {
		return 0, fmt.Errorf("set chunk size: %w", err)
	}

	glog.V(1).Infof("Downloading %d KiB from offset 0x%06X, bank %s", size/1024, offset, bank)

	buf := make([]byte, chunk)
	var moved int64
	for moved < size {
		want := min(chunk, size-moved)

		if err := sendCommand(link, CmdDumpRAM, offset, packExtent(chunk, bank)); err != nil {
			return moved, err
		}
		n, err := moveChunk(link, func() (int, error) { return link.Read(buf[:want]) })
		if err != nil {
			return moved, &TransferError{Cmd: CmdDumpRAM, Moved: moved, Err: err}
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			return moved, fmt.Errorf("writing sink after %d bytes: %w", moved, err)
		}

		offset += uint32(n)
		moved += int64(n)
		if progress != nil {
			progress(moved, size)
		}
	}
	return moved, nil
}

// moveChunk runs one bulk operation, retrying a stalled or failing
// link with a short delay and a buffer purge between attempts. A
// partial transfer counts as progress, not failure; the caller
// continues from the new position.
func moveChunk(link devices.Link, op func() (int, error)) (int, error) {
	var n int
	err := attempt(transferTries, func() {
		time.Sleep(transferRetryDelay)
		link.Purge()
	}, func() error {
		var err error
		n, err = op()
		if err != nil {
			return err
		}
		if n <= 0 {
			return ErrLinkStalled
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// remaining measures the readable length of src from its current
// position, restoring the position afterwards.
func remaining(src io.ReadSeeker) (int64, error) {
	cur, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := src.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end - cur, nil
}
