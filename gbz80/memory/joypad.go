package memory

import "github.com/arjunrg/gbz80/gbz80/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad represents the Gameboy joypad (register P1/0xFF00) and the actual
// button/d-pad state it's multiplexed from. Pressing a button requests the
// Joypad interrupt on any high-to-low transition of a currently-selected
// line, matching real hardware.
type Joypad struct {
	buttons uint8 // bit clear = pressed: A/B/Select/Start
	dpad    uint8 // bit clear = pressed: Right/Left/Up/Down
	select_ uint8 // bits 4-5 of P1, which group(s) are selected

	// RequestInterrupt is called on a high-to-low transition of any
	// currently-selected button line. May be nil.
	RequestInterrupt func()
}

// NewJoypad creates a new Joypad instance with nothing pressed.
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

// Read returns the full P1 register value: bits 6-7 always read 1, bits 4-5
// echo the current selection, bits 0-3 are the selected button group (or all
// 1s if no group, or both groups ANDed together, are selected).
func (j *Joypad) Read() uint8 {
	result := uint8(0b1100_0000) | j.select_

	selectDpad := !bit.IsSet(4, j.select_)
	selectButtons := !bit.IsSet(5, j.select_)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write updates the selection bits (4-5); the rest of P1 is read-only.
func (j *Joypad) Write(value uint8) {
	j.select_ = value & 0b0011_0000
}

// Press updates the joypad state when a key is pressed, firing
// RequestInterrupt if this is a high-to-low transition on a selected line.
func (j *Joypad) Press(key JoypadKey) {
	before := j.Read()
	switch key {
	case JoypadRight:
		j.dpad = bit.Reset(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Reset(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Reset(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Reset(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Reset(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Reset(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Reset(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Reset(3, j.buttons)
	}

	transitions := (before & 0x0F) &^ (j.Read() & 0x0F)
	if j.RequestInterrupt != nil && transitions != 0 {
		j.RequestInterrupt()
	}
}

// Release updates the joypad state when a key is released.
func (j *Joypad) Release(key JoypadKey) {
	switch key {
	case JoypadRight:
		j.dpad = bit.Set(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Set(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Set(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Set(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Set(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Set(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Set(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Set(3, j.buttons)
	}
}
