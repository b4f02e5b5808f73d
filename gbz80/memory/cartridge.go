package memory

import (
	"errors"
	"fmt"
	"log/slog"
)

// Header field offsets, per the standard Nintendo cartridge layout.
const (
	titleAddress          = 0x0134
	titleLength           = 16
	cgbFlagAddress        = 0x0143
	mbcTypeAddress        = 0x0147
	romSizeAddress        = 0x0148
	ramSizeAddress        = 0x0149
	headerChecksumAddress = 0x014D
)

// Errors returned by NewCartridgeWithData and LoadBatteryRAM. Hosts should use errors.Is to check for them.
var (
	ErrInvalidROM     = errors.New("gbz80: invalid rom header")
	ErrUnsupportedMBC = errors.New("gbz80: unsupported mbc type")
	ErrBatteryRAMSize = errors.New("gbz80: battery ram size mismatch")
)

// MBCType identifies the memory bank controller variant a cartridge uses,
// decoded from header byte 0x0147.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC2Type
	MBC3Type
	MBC5Type
	MBCUnknownType
)

// CGBFlag describes a cartridge's declared Game Boy Color support.
type CGBFlag uint8

const (
	CGBUnsupported CGBFlag = iota
	CGBSupported            // 0x80: works on both DMG and CGB
	CGBOnly                 // 0xC0: CGB required
)

// ramSizeBytes maps header byte 0x0149 to installed external RAM size.
var ramSizeBytes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Cartridge carries the immutable ROM image, parsed header metadata, and
// the bank selectors/RAM needed to construct the right MBC.
type Cartridge struct {
	data []byte

	title          string
	cgbFlag        CGBFlag
	mbcType        MBCType
	hasBattery     bool
	hasRTC         bool
	hasRumble      bool
	romBankCount   int
	ramBankCount   uint8
	headerChecksum uint8
	checksumValid  bool
}

// NewCartridge creates an empty cartridge with no ROM mapped in, useful for
// powering on a Machine with no game inserted.
func NewCartridge() *Cartridge {
	return &Cartridge{data: make([]byte, 0x8000)}
}

// NewCartridgeWithData parses header metadata out of a ROM image and
// returns a Cartridge ready to build an MBC from. An invalid or truncated
// header returns ErrInvalidROM; an unrecognized MBC byte returns
// ErrUnsupportedMBC. A bad header checksum is only a soft warning (real
// hardware doesn't check it either).
func NewCartridgeWithData(data []byte) (*Cartridge, error) {
	if len(data) < 0x150 {
		return nil, fmt.Errorf("rom too small (%d bytes): %w", len(data), ErrInvalidROM)
	}

	cart := &Cartridge{
		data:    data,
		title:   cleanGameboyTitle(data[titleAddress : titleAddress+titleLength]),
		cgbFlag: parseCGBFlag(data[cgbFlagAddress]),
	}

	mbcByte := data[mbcTypeAddress]
	mbcType, hasBattery, hasRTC, hasRumble, ok := decodeMBCByte(mbcByte)
	if !ok {
		return nil, fmt.Errorf("unrecognized cartridge type byte 0x%02X: %w", mbcByte, ErrUnsupportedMBC)
	}
	cart.mbcType = mbcType
	cart.hasBattery = hasBattery
	cart.hasRTC = hasRTC
	cart.hasRumble = hasRumble

	cart.romBankCount = 2 << data[romSizeAddress]

	ramBytes, known := ramSizeBytes[data[ramSizeAddress]]
	if !known {
		ramBytes = 0
	}
	if mbcType == MBC2Type {
		// MBC2 carries its own built-in 512x4-bit RAM; the header RAM size byte is unused.
		cart.ramBankCount = 0
	} else if ramBytes > 0 {
		cart.ramBankCount = uint8(ramBytes / 0x2000)
		if cart.ramBankCount == 0 {
			cart.ramBankCount = 1 // sub-8KiB RAM size, round up to one bank
		}
	}

	cart.headerChecksum = data[headerChecksumAddress]
	cart.checksumValid = verifyHeaderChecksum(data) == cart.headerChecksum
	if !cart.checksumValid {
		slog.Warn("cartridge header checksum mismatch, loading anyway", "title", cart.title)
	}

	return cart, nil
}

// verifyHeaderChecksum recomputes the header checksum over 0x0134-0x014C.
func verifyHeaderChecksum(data []byte) uint8 {
	var sum uint8
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - data[addr] - 1
	}
	return sum
}

func parseCGBFlag(b uint8) CGBFlag {
	switch b {
	case 0x80:
		return CGBSupported
	case 0xC0:
		return CGBOnly
	default:
		return CGBUnsupported
	}
}

// decodeMBCByte maps header byte 0x0147 to an MBC variant and its optional
// features (battery, RTC, rumble). Returns ok=false for bytes this core
// doesn't implement (MBC6, MBC7, pocket camera, HuC1/3, ...).
func decodeMBCByte(b uint8) (mbc MBCType, battery, rtc, rumble bool, ok bool) {
	switch b {
	case 0x00:
		return NoMBCType, false, false, false, true
	case 0x08:
		return NoMBCType, false, false, false, true // ROM+RAM, no battery
	case 0x09:
		return NoMBCType, true, false, false, true // ROM+RAM+BATTERY
	case 0x01, 0x02:
		return MBC1Type, false, false, false, true
	case 0x03:
		return MBC1Type, true, false, false, true
	case 0x05:
		return MBC2Type, false, false, false, true
	case 0x06:
		return MBC2Type, true, false, false, true
	case 0x0F, 0x10:
		return MBC3Type, true, true, false, true // MBC3+TIMER(+RAM)+BATTERY
	case 0x11:
		return MBC3Type, false, false, false, true
	case 0x12:
		return MBC3Type, false, false, false, true
	case 0x13:
		return MBC3Type, true, false, false, true
	case 0x19, 0x1A:
		return MBC5Type, false, false, false, true
	case 0x1B:
		return MBC5Type, true, false, false, true
	case 0x1C, 0x1D:
		return MBC5Type, false, false, true, true
	case 0x1E:
		return MBC5Type, true, false, true, true
	default:
		return MBCUnknownType, false, false, false, false
	}
}

// ReadByte reads a byte at the specified address, for diagnostic use. Does
// not check bounds; callers must ensure addr is valid for the cartridge.
func (c Cartridge) ReadByte(addr uint16) uint8 {
	return c.data[addr]
}

// Title returns the cleaned cartridge title from the header.
func (c Cartridge) Title() string { return c.title }

// CGBFlag returns the cartridge's declared CGB support level.
func (c Cartridge) CGBFlag() CGBFlag { return c.cgbFlag }

// ChecksumValid reports whether the header checksum matched on load.
func (c Cartridge) ChecksumValid() bool { return c.checksumValid }
