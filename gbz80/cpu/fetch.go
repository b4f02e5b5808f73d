package cpu

// fetch.go centralizes the bus-ticking conventions every opcode body in
// opcodes.go/mapping.go relies on. Bus.Read/Write perform no ticking of
// their own - devices only advance via explicit cpu.bus.Tick calls - so
// that Decode's PC peek and handleInterrupts' IE/IF check (both already
// correct, unmodified teacher code) stay free of side effects while every
// opcode still ticks the bus once per M-cycle it actually spends,
// interleaved at the point in the instruction body where that cycle
// happens.

// tickRead ticks one M-cycle and reads a byte from memory.
func (cpu *CPU) tickRead(address uint16) uint8 {
	cpu.bus.Tick(4)
	return cpu.bus.Read(address)
}

// tickWrite ticks one M-cycle and writes a byte to memory.
func (cpu *CPU) tickWrite(address uint16, value uint8) {
	cpu.bus.Tick(4)
	cpu.bus.Write(address, value)
}

// readN ticks one M-cycle and reads the 'n' immediate, advancing PC.
func (cpu *CPU) readN() uint8 {
	cpu.bus.Tick(4)
	return cpu.readImmediate()
}

// readNN ticks two M-cycles and reads the 'nn' immediate, advancing PC.
func (cpu *CPU) readNN() uint16 {
	cpu.bus.Tick(8)
	return cpu.readImmediateWord()
}

// readE ticks one M-cycle and reads the signed 'e' immediate, advancing PC.
func (cpu *CPU) readE() int8 {
	cpu.bus.Tick(4)
	return cpu.readSignedImmediate()
}

// regValue returns the value of 8-bit register index idx (0=B,1=C,2=D,
// 3=E,4=H,5=L,6=(HL),7=A), ticking the bus for a memory access if idx==6.
func regValue(cpu *CPU, idx uint8) uint8 {
	switch idx {
	case 0:
		return cpu.b
	case 1:
		return cpu.c
	case 2:
		return cpu.d
	case 3:
		return cpu.e
	case 4:
		return cpu.h
	case 5:
		return cpu.l
	case 6:
		return cpu.tickRead(cpu.getHL())
	default:
		return cpu.a
	}
}

// setRegValue stores value into 8-bit register index idx, ticking the bus
// for a memory access if idx==6.
func setRegValue(cpu *CPU, idx uint8, value uint8) {
	switch idx {
	case 0:
		cpu.b = value
	case 1:
		cpu.c = value
	case 2:
		cpu.d = value
	case 3:
		cpu.e = value
	case 4:
		cpu.h = value
	case 5:
		cpu.l = value
	case 6:
		cpu.tickWrite(cpu.getHL(), value)
	default:
		cpu.a = value
	}
}

// regPtr returns a pointer to 8-bit register index idx. idx must not be 6
// ((HL) has no register storage; callers handle it as a memory operand).
func regPtr(cpu *CPU, idx uint8) *uint8 {
	switch idx {
	case 0:
		return &cpu.b
	case 1:
		return &cpu.c
	case 2:
		return &cpu.d
	case 3:
		return &cpu.e
	case 4:
		return &cpu.h
	case 5:
		return &cpu.l
	default:
		return &cpu.a
	}
}

// illegal handles one of the Game Boy's 11 undefined opcodes. Real
// hardware locks up the CPU; this marks the CPU stopped so Machine can
// surface a frozen-machine condition instead of continuing to execute
// garbage.
func illegal(cpu *CPU) int {
	cpu.bus.Tick(4)
	cpu.stopped = true
	return 4
}

// IsStopped reports whether the CPU has executed STOP or an undefined
// opcode and is no longer progressing on its own.
func (c *CPU) IsStopped() bool { return c.stopped }
