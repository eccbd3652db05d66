package proto

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildCommandGolden(t *testing.T) {
	frame, err := BuildCommand(CmdPIRead32, 0x10000000)
	if err != nil {
		t.Fatalf("BuildCommand: %v", err)
	}
	want := []byte{0x90, 'C', 'M', 'D', 0x10, 0x00, 0x00, 0x00}
	if !bytes.Equal(frame, want) {
		t.Fatalf("frame = % 02X, want % 02X", frame, want)
	}
}

func TestBuildCommandNoParams(t *testing.T) {
	frame, err := BuildCommand(CmdGetVer)
	if err != nil {
		t.Fatalf("BuildCommand: %v", err)
	}
	want := []byte{0x80, 'C', 'M', 'D'}
	if !bytes.Equal(frame, want) {
		t.Fatalf("frame = % 02X, want % 02X", frame, want)
	}
}

func TestBuildCommandMaxParams(t *testing.T) {
	params := make([]uint32, MaxParams)
	frame, err := BuildCommand(CmdLoadRAM, params...)
	if err != nil {
		t.Fatalf("BuildCommand with %d params: %v", MaxParams, err)
	}
	if len(frame) != 32 {
		t.Fatalf("frame length = %d, want 32", len(frame))
	}
}

func TestBuildCommandTooManyParams(t *testing.T) {
	params := make([]uint32, MaxParams+1)
	if _, err := BuildCommand(CmdLoadRAM, params...); !errors.Is(err, ErrTooManyParams) {
		t.Fatalf("err = %v, want ErrTooManyParams", err)
	}
}

func TestSendCommandNoIOOnBadFrame(t *testing.T) {
	l := &fakeLink{}
	params := make([]uint32, MaxParams+1)
	if err := sendCommand(l, CmdLoadRAM, params...); !errors.Is(err, ErrTooManyParams) {
		t.Fatalf("err = %v, want ErrTooManyParams", err)
	}
	if l.writeCalls != 0 {
		t.Fatalf("wrote %d frames, want none", l.writeCalls)
	}
}
