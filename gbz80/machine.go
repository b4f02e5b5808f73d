package gbz80

import (
	"context"
	"errors"
	"fmt"

	"github.com/arjunrg/gbz80/gbz80/cpu"
	"github.com/arjunrg/gbz80/gbz80/debug"
	"github.com/arjunrg/gbz80/gbz80/memory"
	"github.com/arjunrg/gbz80/gbz80/video"
)

// ErrMachineFrozen is returned by RunUntilVBlank once the CPU has executed
// an undocumented opcode (0xD3, 0xDB, ...) and permanently frozen, or has
// STOPped with no joypad source to wake it (a true hang on DMG hardware).
var ErrMachineFrozen = errors.New("gbz80: machine is frozen")

// Option configures a Machine at construction time, following the
// functional-options idiom the teacher already uses for MBC construction
// (NewMBC1(...), NewMBC3(..., clock)).
type Option func(*machineConfig)

type machineConfig struct {
	romData []byte
	clock   memory.Clock
}

// WithROM loads the given cartridge image at construction time. Without
// it, the Machine powers on with no cartridge mapped in, as real hardware
// does with no cart inserted.
func WithROM(data []byte) Option {
	return func(c *machineConfig) { c.romData = data }
}

// WithClock injects a deterministic RTC clock for MBC3 cartridges,
// overriding the default wall-clock time.Now source.
func WithClock(clock memory.Clock) Option {
	return func(c *machineConfig) { c.clock = clock }
}

// Machine is the root aggregate: CPU, Bus, Cartridge/MBC, PPU, Timer,
// Joypad, IE/IF and the serial shadow registers, reachable only through
// Bus. It owns the single monotonic cycle counter, counted in T-states
// (cpu.CPU.GetCycles).
type Machine struct {
	cfg machineConfig

	cpu *cpu.CPU
	bus *Bus

	frozen bool
	debugOverlayFlags uint8
}

// New constructs a Machine and powers it on, equivalent to turning on a
// Game Boy with (or without, if WithROM is omitted) a cartridge inserted.
func New(opts ...Option) (*Machine, error) {
	m := &Machine{}
	for _, opt := range opts {
		opt(&m.cfg)
	}

	if err := m.powerOn(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Machine) powerOn() error {
	var mmu *memory.MMU

	if len(m.cfg.romData) > 0 {
		cart, err := memory.NewCartridgeWithData(m.cfg.romData)
		if err != nil {
			return fmt.Errorf("gbz80: load cartridge: %w", err)
		}
		mmu = memory.NewWithCartridgeAndClock(cart, m.cfg.clock)
	} else {
		mmu = memory.New()
	}

	m.bus = NewBus(mmu)
	m.cpu = cpu.New(m.bus)
	m.frozen = false

	return nil
}

// Reset restores every owned component to power-on values without
// reallocating the Machine itself, reloading the same cartridge image (if
// any) it was constructed with.
func (m *Machine) Reset() error {
	return m.powerOn()
}

// RunUntilVBlank executes instructions until the PPU has completed exactly
// one more frame (entered VBlank), returning the freshly rendered
// framebuffer. ctx is checked between instructions only - never
// mid-instruction, preserving the interrupt-dispatch and HALT-bug
// invariants in cpu/cpu.go - so a cancelled context can only stop the
// Machine at an instruction boundary.
func (m *Machine) RunUntilVBlank(ctx context.Context) (*video.FrameBuffer, error) {
	if m.frozen {
		return nil, ErrMachineFrozen
	}

	startFrame := m.bus.PPU.FrameCount()

	for m.bus.PPU.FrameCount() == startFrame {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		m.cpu.Exec()

		if m.cpu.IsStopped() {
			m.frozen = true
			return nil, ErrMachineFrozen
		}
	}

	return m.bus.PPU.Framebuffer(), nil
}

// Joypad returns the live button/d-pad matrix, for a host input layer
// (input.Manager) to drive directly.
func (m *Machine) Joypad() *memory.Joypad {
	return m.bus.MMU.Joypad()
}

// Press notifies the joypad matrix that a button was pressed, firing the
// Joypad interrupt on a high-to-low P1 transition.
func (m *Machine) Press(key memory.JoypadKey) {
	m.bus.MMU.HandleKeyPress(key)
}

// Release notifies the joypad matrix that a button was released.
func (m *Machine) Release(key memory.JoypadKey) {
	m.bus.MMU.HandleKeyRelease(key)
}

// BatteryRAM returns a copy-on-read view of the cartridge's battery-backed
// external RAM (and, for MBC3, its latched RTC registers), or nil if the
// cartridge has none.
func (m *Machine) BatteryRAM() ([]byte, error) {
	return m.bus.MMU.BatteryRAM(), nil
}

// LoadBatteryRAM restores external RAM (and RTC state, for MBC3) from a
// previous BatteryRAM dump. Returns memory.ErrBatteryRAMSize if the data's
// length doesn't match the installed RAM.
func (m *Machine) LoadBatteryRAM(data []byte) error {
	return m.bus.MMU.LoadBatteryRAM(data)
}

// SetDebugOverlayFlags stores the debug visualization bits (tilemap,
// window, sprite, LYC line). Nothing in this tree reads them back or draws
// an overlay from them. Never affects emulation itself.
func (m *Machine) SetDebugOverlayFlags(bits uint8) {
	m.debugOverlayFlags = bits
}

// ExtractDebugData implements backend.DebugDataProvider, giving
// debug-capable backends a structured snapshot of CPU registers, a memory
// window around PC (for disassembly), and the current debugger state.
func (m *Machine) ExtractDebugData() *debug.CompleteDebugData {
	const windowBefore = 32
	const windowSize = 64

	pc := m.cpu.GetPC()
	start := pc
	if start > windowBefore {
		start -= windowBefore
	} else {
		start = 0
	}

	bytes := make([]byte, windowSize)
	for i := range bytes {
		bytes[i] = m.bus.Read(start + uint16(i))
	}

	return &debug.CompleteDebugData{
		CPU: &debug.CPUState{
			A: m.cpu.GetA(), F: m.cpu.GetF(),
			B: m.cpu.GetB(), C: m.cpu.GetC(),
			D: m.cpu.GetD(), E: m.cpu.GetE(),
			H: m.cpu.GetH(), L: m.cpu.GetL(),
			SP: m.cpu.GetSP(), PC: pc,
			IME:    m.cpu.GetIME(),
			Cycles: m.cpu.GetCycles(),
		},
		Memory: &debug.MemorySnapshot{
			StartAddr: start,
			Bytes:     bytes,
		},
		DebuggerState:   debug.DebuggerRunning,
		InterruptEnable: m.cpu.GetIE(),
		InterruptFlags:  m.cpu.GetIF(),
	}
}
