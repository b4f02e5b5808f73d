package gbz80

import (
	"github.com/arjunrg/gbz80/gbz80/addr"
	"github.com/arjunrg/gbz80/gbz80/memory"
	"github.com/arjunrg/gbz80/gbz80/video"
)

// Bus is the single point every CPU memory access and ALU-only wait cycle
// goes through. Unlike the teacher's jeebie/bus.go, which ticked devices
// once per decoded instruction from outside the CPU (a pull model that
// can't place devices at the exact M-cycle a multi-cycle instruction
// reaches them), this Bus advances Timer/PPU/Serial/APU from Tick only -
// Read/Write never advance devices - and the CPU calls Tick for every M-cycle it
// spends, whether or not that cycle touches memory, so device state is
// correct to observe at every point an opcode body or control-flow helper
// calls back into it (see cpu/fetch.go, cpu/control.go).
type Bus struct {
	MMU *memory.MMU
	PPU *video.PPU
}

// NewBus wires the given MMU to a fresh PPU, which reaches memory and
// requests interrupts through the returned Bus.
func NewBus(mmu *memory.MMU) *Bus {
	bus := &Bus{MMU: mmu}
	bus.PPU = video.NewPPU(bus)
	return bus
}

func (b *Bus) Read(address uint16) byte {
	return b.MMU.Read(address)
}

func (b *Bus) Write(address uint16, value byte) {
	b.MMU.Write(address, value)
}

func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	b.MMU.RequestInterrupt(interrupt)
}

// Tick advances every device that progresses with wall-clock (well,
// CPU-clock) time by the given number of T-states. Called from
// cpu/fetch.go's helpers and cpu.go's interrupt dispatch and HALT loop -
// never from Read/Write themselves, so peeking memory (Decode's opcode
// fetch, handleInterrupts' IE/IF check) never advances devices on its own.
func (b *Bus) Tick(cycles int) {
	b.MMU.Tick(cycles)
	b.PPU.Tick(cycles)
}
