// Package rom loads N64 ROM images for upload: transparent xz
// decompression and normalization of the three circulating byte
// orders to the console-native big-endian layout.
package rom

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/ulikunitz/xz"
)

// The first word of an N64 ROM header, as it appears in each byte
// order.
const (
	magicZ64 = 0x80371240 // big-endian (.z64), console-native
	magicV64 = 0x37804012 // 16-bit byteswapped (.v64)
	magicN64 = 0x40123780 // 32-bit little-endian (.n64)
)

// Order is the byte order a source image arrived in.
type Order int

const (
	// OrderUnknown means the data carries no N64 ROM header. It is
	// passed through untouched; save images land here.
	OrderUnknown Order = iota
	OrderBigEndian
	OrderByteSwapped
	OrderLittleEndian
)

func (o Order) String() string {
	switch o {
	case OrderBigEndian:
		return "big-endian (z64)"
	case OrderByteSwapped:
		return "byteswapped (v64)"
	case OrderLittleEndian:
		return "little-endian (n64)"
	}
	return "unknown"
}

// Image is an in-memory upload source in big-endian byte order.
type Image struct {
	*bytes.Reader

	// Order is the byte order the source data was in before
	// normalization.
	Order Order
}

// New wraps data as an upload source, normalizing byteswapped and
// little-endian ROM images in place. Data without a ROM header is
// left untouched.
func New(data []byte) (*Image, error) {
	ord := detect(data)
	switch ord {
	case OrderByteSwapped:
		swap16(data)
	case OrderLittleEndian:
		swap32(data)
	}
	return &Image{
		Reader: bytes.NewReader(data),
		Order:  ord,
	}, nil
}

// Open reads the image at path into memory, decompressing .xz files
// on the fly.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".xz") {
		glog.V(1).Infof("Decompressing %s", filepath.Base(path))
		xr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return New(data)
}

func detect(data []byte) Order {
	if len(data) < 4 {
		return OrderUnknown
	}
	switch binary.BigEndian.Uint32(data) {
	case magicZ64:
		return OrderBigEndian
	case magicV64:
		return OrderByteSwapped
	case magicN64:
		return OrderLittleEndian
	}
	return OrderUnknown
}

// swap16 swaps every byte pair in place. A trailing odd byte is left
// alone.
func swap16(data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		data[i], data[i+1] = data[i+1], data[i]
	}
}

// swap32 reverses every 4-byte group in place. A trailing partial
// group is left alone.
func swap32(data []byte) {
	for i := 0; i+3 < len(data); i += 4 {
		data[i], data[i+3] = data[i+3], data[i]
		data[i+1], data[i+2] = data[i+2], data[i+1]
	}
}
