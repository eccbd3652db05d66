package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestChunkBytes(t *testing.T) {
	for _, tc := range []struct {
		size, want int64
	}{
		{100, 100},
		{131072, 131072},
		{524288, 524288},
		{1 << 20, 512 * 1024},
		{2 << 20, 512 * 1024},
		{2<<20 + 1, 2 << 20},
		{16 << 20, 2 << 20},
		{16<<20 + 1, 4 << 20},
		{64 << 20, 4 << 20},
		{256 << 20, 4 << 20},
	} {
		if got := chunkBytes(tc.size); got != tc.want {
			t.Errorf("chunkBytes(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestChunkBytesProperties(t *testing.T) {
	prev := int64(0)
	for size := int64(1); size <= 512<<20; size *= 2 {
		c := chunkBytes(size)
		if c < prev {
			t.Errorf("chunkBytes not monotone: f(%d) = %d < %d", size, c, prev)
		}
		if c%chunkUnit != 0 && c != size {
			t.Errorf("chunkBytes(%d) = %d: neither a unit multiple nor the clamped size", size, c)
		}
		if c > size {
			t.Errorf("chunkBytes(%d) = %d exceeds size", size, c)
		}
		prev = c
	}
}

func commandFrame(t *testing.T, frame []byte, wantCmd Command) (offset, packed uint32) {
	t.Helper()
	if len(frame) != 12 {
		t.Fatalf("frame length = %d, want 12", len(frame))
	}
	if frame[0] != byte(wantCmd) {
		t.Fatalf("opcode = 0x%02X, want 0x%02X", frame[0], byte(wantCmd))
	}
	return binary.BigEndian.Uint32(frame[4:]), binary.BigEndian.Uint32(frame[8:])
}

func TestUploadTwoChunks(t *testing.T) {
	src := bytes.NewReader(make([]byte, 1<<20))
	l := &fakeLink{}
	var progress []int64

	moved, err := Upload(l, src, -1, 0, BankCartROM, func(m, total int64) {
		progress = append(progress, m)
		if total != 1<<20 {
			t.Errorf("progress total = %d, want %d", total, 1<<20)
		}
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if moved != 1<<20 {
		t.Fatalf("moved = %d, want %d", moved, 1<<20)
	}
	if l.chunk != 524288 {
		t.Errorf("negotiated chunk = %d, want 524288", l.chunk)
	}

	// Two chunks, each a command frame followed by a bulk payload.
	if len(l.writes) != 4 {
		t.Fatalf("wrote %d times, want 4", len(l.writes))
	}
	off0, packed0 := commandFrame(t, l.writes[0], CmdLoadRAM)
	if off0 != 0 {
		t.Errorf("first chunk offset = %d, want 0", off0)
	}
	wantPacked := uint32(524288) | uint32(BankCartROM)<<24
	if packed0 != wantPacked {
		t.Errorf("packed param = 0x%08X, want 0x%08X", packed0, wantPacked)
	}
	if len(l.writes[1]) != 524288 {
		t.Errorf("first payload = %d bytes, want 524288", len(l.writes[1]))
	}
	off1, _ := commandFrame(t, l.writes[2], CmdLoadRAM)
	if off1 != 524288 {
		t.Errorf("second chunk offset = %d, want 524288", off1)
	}

	want := []int64{524288, 1048576}
	if len(progress) != 2 || progress[0] != want[0] || progress[1] != want[1] {
		t.Errorf("progress = %v, want %v", progress, want)
	}
}

func TestUploadSmallClampsToOneChunk(t *testing.T) {
	src := bytes.NewReader(make([]byte, 100))
	l := &fakeLink{}

	moved, err := Upload(l, src, -1, 0, BankCartROM, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if moved != 100 {
		t.Fatalf("moved = %d, want 100", moved)
	}
	if len(l.writes) != 2 {
		t.Fatalf("wrote %d times, want 2", len(l.writes))
	}
	_, packed := commandFrame(t, l.writes[0], CmdLoadRAM)
	if packed&0xFFFFFF != 100 {
		t.Errorf("packed chunk size = %d, want 100", packed&0xFFFFFF)
	}
}

func TestUploadDerivesSizeFromPosition(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}
	src := bytes.NewReader(data)
	if _, err := src.Seek(900, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	l := &fakeLink{}

	moved, err := Upload(l, src, -1, 0x1000, BankEEPROM16, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if moved != 100 {
		t.Fatalf("moved = %d, want 100", moved)
	}
	if got := l.writes[1][0]; got != byte(900) {
		t.Errorf("payload starts with 0x%02X, want 0x%02X", got, byte(900))
	}
}

func TestUploadShortWriteRewindsSource(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}
	src := bytes.NewReader(data)
	// First write is the command frame; the device then accepts only
	// part of the bulk chunk.
	l := &fakeLink{
		writeScript: []linkCall{
			{n: -1},
			{n: 600},
		},
	}

	moved, err := Upload(l, src, -1, 0, BankCartROM, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if moved != 1000 {
		t.Fatalf("moved = %d, want 1000", moved)
	}

	// Second chunk resumes at device offset 600 with the source byte
	// that follows the short write.
	off, _ := commandFrame(t, l.writes[2], CmdLoadRAM)
	if off != 600 {
		t.Errorf("second chunk offset = %d, want 600", off)
	}
	if got := l.writes[3][0]; got != byte(600) {
		t.Errorf("second payload starts with 0x%02X, want 0x%02X", got, byte(600))
	}
}

func TestDownloadPartialReadsKeepPosition(t *testing.T) {
	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}
	l := &fakeLink{
		readScript: []linkCall{
			callData(600, payload),
			callOK(payload[600:]),
		},
	}
	var dst bytes.Buffer

	moved, err := Download(l, &dst, 1000, 0, BankSRAM256, nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if moved != 1000 {
		t.Fatalf("moved = %d, want 1000", moved)
	}
	if dst.Len() != 1000 {
		t.Fatalf("sink has %d bytes, want 1000", dst.Len())
	}
	off, packed := commandFrame(t, l.writes[1], CmdDumpRAM)
	if off != 600 {
		t.Errorf("second chunk offset = %d, want 600", off)
	}
	if packed>>24 != uint32(BankSRAM256) {
		t.Errorf("bank byte = %d, want %d", packed>>24, BankSRAM256)
	}
}

func TestDownloadRetryExhaustedReportsProgress(t *testing.T) {
	chunk := make([]byte, 524288)
	l := &fakeLink{
		readScript: []linkCall{
			callOK(chunk),
			callStall(), callStall(), callStall(), callStall(), callStall(),
		},
	}
	var dst bytes.Buffer

	moved, err := Download(l, &dst, 1<<20, 0, BankCartROM, nil)
	var terr *TransferError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *TransferError", err)
	}
	if moved != 524288 || terr.Moved != 524288 {
		t.Errorf("moved = %d/%d, want 524288 before abort", moved, terr.Moved)
	}
	if !errors.Is(err, ErrLinkStalled) {
		t.Errorf("err = %v, want wrapped ErrLinkStalled", err)
	}
	// One successful read plus exactly 5 attempts for the failed chunk.
	if l.readCalls != 6 {
		t.Errorf("read attempts = %d, want 6", l.readCalls)
	}
	// Purge runs between attempts of the failed chunk.
	if l.purges != 4 {
		t.Errorf("purges = %d, want 4", l.purges)
	}
	if dst.Len() != 524288 {
		t.Errorf("sink has %d bytes, want 524288", dst.Len())
	}
}

func TestDownloadDefaultSizeBound(t *testing.T) {
	l := &fakeLink{
		readScript: []linkCall{
			callStall(), callStall(), callStall(), callStall(), callStall(),
		},
	}

	_, err := Download(l, io.Discard, -1, 0, BankCartROM, nil)
	if err == nil {
		t.Fatal("expected failure from stalled link")
	}
	// The 256 MiB default picks the largest chunk size.
	if l.chunk != 4<<20 {
		t.Errorf("negotiated chunk = %d, want %d", l.chunk, 4<<20)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(int64(524288), int64(1<<20)); got != 50 {
		t.Errorf("Percent = %d, want 50", got)
	}
	if got := Percent(0, 0); got != 100 {
		t.Errorf("Percent(0,0) = %d, want 100", got)
	}
}
