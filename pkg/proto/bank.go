package proto

import (
	"fmt"
	"strconv"
)

// Bank selects the addressable memory region a transfer targets. The
// id travels in the high byte of the packed size parameter of
// LOADRAM/DUMPRAM.
type Bank uint8

const (
	BankInvalid Bank = iota
	BankCartROM
	BankSRAM256
	BankSRAM768 // only used by Dezaemon 3D
	BankFlashRAM1M
	BankFlashPKM1M // special-case FlashRAM for Pokemon Stadium 2
	BankEEPROM16
	bankLast
)

var bankNames = map[string]Bank{
	"rom":     BankCartROM,
	"sram256": BankSRAM256,
	"sram768": BankSRAM768,
	"flash":   BankFlashRAM1M,
	"pokemon": BankFlashPKM1M,
	"eeprom":  BankEEPROM16,
}

func (b Bank) String() string {
	switch b {
	case BankCartROM:
		return "rom"
	case BankSRAM256:
		return "sram256"
	case BankSRAM768:
		return "sram768"
	case BankFlashRAM1M:
		return "flash"
	case BankFlashPKM1M:
		return "pokemon"
	case BankEEPROM16:
		return "eeprom"
	}
	return "invalid"
}

// BankByName resolves a bank by CLI name, or by bare numeric id for
// compatibility with the Windows tool.
func BankByName(name string) (Bank, error) {
	if b, ok := bankNames[name]; ok {
		return b, nil
	}
	n, err := strconv.Atoi(name)
	if err != nil || n <= 0 || Bank(n) >= bankLast {
		return BankInvalid, fmt.Errorf("invalid bank %q", name)
	}
	return Bank(n), nil
}
