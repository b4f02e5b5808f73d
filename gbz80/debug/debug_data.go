// Package debug holds the data shapes debug-capable backends (terminal,
// headless snapshotting) pull from the running Machine, plus the PNG
// snapshot helper both backends call. Grounded on the teacher's
// debug/debug_data.go and debug/snapshot.go; trimmed to the CPU/memory/
// debugger-state surface terminal.go and headless.go actually read — the
// teacher's OAM/VRAM sprite and tile visualizer data (oam.go, vram.go,
// visualizer.go, tile_fetcher.go, audio.go) has no consumer in this tree
// and is dropped rather than carried as dead weight.
package debug

// CPUState is a read-only snapshot of CPU register state for display.
type CPUState struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8

	SP, PC uint16
	IME    bool
	Cycles uint64
}

// MemorySnapshot is a contiguous window of memory starting at StartAddr,
// used to feed the disassembler around the current PC.
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// DebuggerState reports whether (and why) execution is currently paused.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
)

// CompleteDebugData is the full snapshot a debug-capable backend pulls
// once per redraw via DebugDataProvider.ExtractDebugData.
type CompleteDebugData struct {
	CPU             *CPUState
	Memory          *MemorySnapshot
	DebuggerState   DebuggerState
	InterruptEnable uint8 // IE register at 0xFFFF
	InterruptFlags  uint8 // IF register at 0xFF0F
}
