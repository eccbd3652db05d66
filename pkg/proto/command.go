// Package proto implements the 64drive USB command protocol: command
// framing, the version handshake, chunked bank transfers and CIC
// selection. It talks to the cartridge through a devices.Link and
// performs no device discovery of its own.
package proto

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/glog"

	"github.com/n64tools/drive64/pkg/devices"
)

// Command is a 64drive protocol opcode.
type Command uint8

const (
	CmdLoadRAM   Command = 0x20
	CmdDumpRAM   Command = 0x30
	CmdSetSave   Command = 0x70 // reserved, never sent
	CmdSetCIC    Command = 0x72
	CmdGetVer    Command = 0x80
	CmdUpgrade   Command = 0x84 // firmware upgrade, out of scope
	CmdUpgReport Command = 0x85
	CmdStdEnter  Command = 0x88 // reserved
	CmdStdLeave  Command = 0x89
	CmdPIRead32  Command = 0x90 // reserved PI/SI debug ops
	CmdPIWrite32 Command = 0x91
	CmdPIReadBurst  Command = 0x92
	CmdPIWriteBurst Command = 0x93
	CmdPIWriteBL     Command = 0x94
	CmdPIWriteBLLong Command = 0x95
	CmdSIOp          Command = 0x98
)

// Magic is echoed in the second word of every GETVER response ("UDEV").
const Magic uint32 = 0x55444556

// Every command frame fits in 32 bytes: a 4-byte header plus up to
// MaxParams big-endian words. The bound comes from the frame buffer of
// the reference firmware tooling, not from the protocol itself; no
// defined opcode takes more than 2 parameters.
const (
	frameSize = 32
	// MaxParams is the most parameters one command frame can carry.
	MaxParams = (frameSize - 4) / 4
)

// BuildCommand encodes an opcode and its parameters into a wire frame:
// byte 0 is the opcode, bytes 1-3 the literal "CMD" tag the firmware
// checks, followed by each parameter big-endian. More than MaxParams
// parameters is a caller bug and fails before any I/O.
func BuildCommand(cmd Command, params ...uint32) ([]byte, error) {
	if len(params) > MaxParams {
		return nil, fmt.Errorf("command 0x%02X: %w (%d > %d)", uint8(cmd), ErrTooManyParams, len(params), MaxParams)
	}

	frame := make([]byte, 4+4*len(params))
	frame[0] = byte(cmd)
	frame[1] = 'C'
	frame[2] = 'M'
	frame[3] = 'D'
	for i, p := range params {
		binary.BigEndian.PutUint32(frame[4+4*i:], p)
	}
	return frame, nil
}

// sendCommand frames and writes one command. The device sends no
// acknowledgement; whatever response a command produces is read by the
// caller directly from the link.
func sendCommand(link devices.Link, cmd Command, params ...uint32) error {
	frame, err := BuildCommand(cmd, params...)
	if err != nil {
		return err
	}

	glog.V(3).Infof("Sending command 0x%02X", uint8(cmd))
	n, err := link.Write(frame)
	if err != nil {
		return fmt.Errorf("command 0x%02X write: %w", uint8(cmd), err)
	}
	if n != len(frame) {
		return fmt.Errorf("command 0x%02X: short write (%d of %d bytes)", uint8(cmd), n, len(frame))
	}
	return nil
}
