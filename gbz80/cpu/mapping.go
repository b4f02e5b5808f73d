package cpu

import "github.com/arjunrg/gbz80/gbz80/bit"

// mapping.go implements opcode dispatch: Decode inspects the byte(s) at PC
// and returns the Opcode function to execute, grounded directly on the
// teacher's mapping.go (same peek-then-route shape, same 0xCB detection).
// The two 256-entry tables are populated by init(): the ~144 irregular
// opcodes are the hand-written opcode0xNN functions in opcodes.go, while
// the regular LD r,r' block (0x40-0x7F), the regular ALU-A block
// (0x80-0xBF), and the entire CB-prefixed table are generated here instead
// of hand-duplicating near-identical bodies a few hundred times - the
// teacher's own retrieved opcodes_cb.go showed why hand-duplication is
// risky: its sample RLC (HL) body double-ticked its cycle count.

// Opcode is a single CPU instruction: it mutates cpu state and returns the
// number of T-states (not M-cycles) it took.
type Opcode func(cpu *CPU) int

var opcodes [256]Opcode
var opcodesCB [256]Opcode

// Decode peeks the byte(s) at PC and returns the instruction to run,
// without advancing PC or ticking the bus - timing is entirely the
// returned Opcode's responsibility (see fetch.go).
func Decode(c *CPU) Opcode {
	opcodeByte := c.peekImmediate()

	if opcodeByte == 0xCB {
		cbOpcode := c.bus.Read(c.pc + 1)
		c.currentOpcode = bit.Combine(0xCB, cbOpcode)
		return opcodesCB[cbOpcode]
	}

	c.currentOpcode = bit.Combine(0x00, opcodeByte)
	return opcodes[opcodeByte]
}

func init() {
	registerIrregularOpcodes()
	registerLDBlock()
	registerALUBlock()
	registerCBTable()
}

// registerIrregularOpcodes wires the hand-written opcode0xNN functions
// from opcodes.go into the table. 0x40-0xBF (minus 0x76) are left for the
// generators below.
func registerIrregularOpcodes() {
	opcodes[0x00] = opcode0x00
	opcodes[0x01] = opcode0x01
	opcodes[0x02] = opcode0x02
	opcodes[0x03] = opcode0x03
	opcodes[0x04] = opcode0x04
	opcodes[0x05] = opcode0x05
	opcodes[0x06] = opcode0x06
	opcodes[0x07] = opcode0x07
	opcodes[0x08] = opcode0x08
	opcodes[0x09] = opcode0x09
	opcodes[0x0A] = opcode0x0A
	opcodes[0x0B] = opcode0x0B
	opcodes[0x0C] = opcode0x0C
	opcodes[0x0D] = opcode0x0D
	opcodes[0x0E] = opcode0x0E
	opcodes[0x0F] = opcode0x0F

	opcodes[0x10] = opcode0x10
	opcodes[0x11] = opcode0x11
	opcodes[0x12] = opcode0x12
	opcodes[0x13] = opcode0x13
	opcodes[0x14] = opcode0x14
	opcodes[0x15] = opcode0x15
	opcodes[0x16] = opcode0x16
	opcodes[0x17] = opcode0x17
	opcodes[0x18] = opcode0x18
	opcodes[0x19] = opcode0x19
	opcodes[0x1A] = opcode0x1A
	opcodes[0x1B] = opcode0x1B
	opcodes[0x1C] = opcode0x1C
	opcodes[0x1D] = opcode0x1D
	opcodes[0x1E] = opcode0x1E
	opcodes[0x1F] = opcode0x1F

	opcodes[0x20] = opcode0x20
	opcodes[0x21] = opcode0x21
	opcodes[0x22] = opcode0x22
	opcodes[0x23] = opcode0x23
	opcodes[0x24] = opcode0x24
	opcodes[0x25] = opcode0x25
	opcodes[0x26] = opcode0x26
	opcodes[0x27] = opcode0x27
	opcodes[0x28] = opcode0x28
	opcodes[0x29] = opcode0x29
	opcodes[0x2A] = opcode0x2A
	opcodes[0x2B] = opcode0x2B
	opcodes[0x2C] = opcode0x2C
	opcodes[0x2D] = opcode0x2D
	opcodes[0x2E] = opcode0x2E
	opcodes[0x2F] = opcode0x2F

	opcodes[0x30] = opcode0x30
	opcodes[0x31] = opcode0x31
	opcodes[0x32] = opcode0x32
	opcodes[0x33] = opcode0x33
	opcodes[0x34] = opcode0x34
	opcodes[0x35] = opcode0x35
	opcodes[0x36] = opcode0x36
	opcodes[0x37] = opcode0x37
	opcodes[0x38] = opcode0x38
	opcodes[0x39] = opcode0x39
	opcodes[0x3A] = opcode0x3A
	opcodes[0x3B] = opcode0x3B
	opcodes[0x3C] = opcode0x3C
	opcodes[0x3D] = opcode0x3D
	opcodes[0x3E] = opcode0x3E
	opcodes[0x3F] = opcode0x3F

	opcodes[0x76] = opcode0x76 // HALT, overrides the LD block's 0x76 slot

	opcodes[0xC0] = opcode0xC0
	opcodes[0xC1] = opcode0xC1
	opcodes[0xC2] = opcode0xC2
	opcodes[0xC3] = opcode0xC3
	opcodes[0xC4] = opcode0xC4
	opcodes[0xC5] = opcode0xC5
	opcodes[0xC6] = opcode0xC6
	opcodes[0xC7] = opcode0xC7
	opcodes[0xC8] = opcode0xC8
	opcodes[0xC9] = opcode0xC9
	opcodes[0xCA] = opcode0xCA
	opcodes[0xCB] = opcode0xCB
	opcodes[0xCC] = opcode0xCC
	opcodes[0xCD] = opcode0xCD
	opcodes[0xCE] = opcode0xCE
	opcodes[0xCF] = opcode0xCF

	opcodes[0xD0] = opcode0xD0
	opcodes[0xD1] = opcode0xD1
	opcodes[0xD2] = opcode0xD2
	opcodes[0xD3] = opcode0xD3
	opcodes[0xD4] = opcode0xD4
	opcodes[0xD5] = opcode0xD5
	opcodes[0xD6] = opcode0xD6
	opcodes[0xD7] = opcode0xD7
	opcodes[0xD8] = opcode0xD8
	opcodes[0xD9] = opcode0xD9
	opcodes[0xDA] = opcode0xDA
	opcodes[0xDB] = opcode0xDB
	opcodes[0xDC] = opcode0xDC
	opcodes[0xDD] = opcode0xDD
	opcodes[0xDE] = opcode0xDE
	opcodes[0xDF] = opcode0xDF

	opcodes[0xE0] = opcode0xE0
	opcodes[0xE1] = opcode0xE1
	opcodes[0xE2] = opcode0xE2
	opcodes[0xE3] = opcode0xE3
	opcodes[0xE4] = opcode0xE4
	opcodes[0xE5] = opcode0xE5
	opcodes[0xE6] = opcode0xE6
	opcodes[0xE7] = opcode0xE7
	opcodes[0xE8] = opcode0xE8
	opcodes[0xE9] = opcode0xE9
	opcodes[0xEA] = opcode0xEA
	opcodes[0xEB] = opcode0xEB
	opcodes[0xEC] = opcode0xEC
	opcodes[0xED] = opcode0xED
	opcodes[0xEE] = opcode0xEE
	opcodes[0xEF] = opcode0xEF

	opcodes[0xF0] = opcode0xF0
	opcodes[0xF1] = opcode0xF1
	opcodes[0xF2] = opcode0xF2
	opcodes[0xF3] = opcode0xF3
	opcodes[0xF4] = opcode0xF4
	opcodes[0xF5] = opcode0xF5
	opcodes[0xF6] = opcode0xF6
	opcodes[0xF7] = opcode0xF7
	opcodes[0xF8] = opcode0xF8
	opcodes[0xF9] = opcode0xF9
	opcodes[0xFA] = opcode0xFA
	opcodes[0xFB] = opcode0xFB
	opcodes[0xFC] = opcode0xFC
	opcodes[0xFD] = opcode0xFD
	opcodes[0xFE] = opcode0xFE
	opcodes[0xFF] = opcode0xFF
}

// makeLD generates LD dest,src for the 8x8 register grid at 0x40-0x7F.
// dest/src index into B,C,D,E,H,L,(HL),A in that order (6 = (HL)).
func makeLD(dest, src uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.bus.Tick(4)
		value := regValue(cpu, src)
		setRegValue(cpu, dest, value)
		if dest == 6 || src == 6 {
			return 8
		}
		return 4
	}
}

// registerLDBlock fills opcodes[0x40:0x80] via makeLD, leaving 0x76 (HALT)
// to the override in registerIrregularOpcodes.
func registerLDBlock() {
	for dest := uint8(0); dest < 8; dest++ {
		for src := uint8(0); src < 8; src++ {
			code := 0x40 + dest*8 + src
			if code == 0x76 {
				continue
			}
			opcodes[code] = makeLD(dest, src)
		}
	}
}

// makeALU generates the ADD/ADC/SUB/SBC/AND/XOR/OR/CP A,src block at
// 0x80-0xBF. op selects the operation in that order; src indexes into
// B,C,D,E,H,L,(HL),A.
func makeALU(op, src uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.bus.Tick(4)
		value := regValue(cpu, src)

		switch op {
		case 0:
			cpu.addToA(value, false)
		case 1:
			cpu.addToA(value, true)
		case 2:
			cpu.sub(value, false)
		case 3:
			cpu.sub(value, true)
		case 4:
			cpu.and(value)
		case 5:
			cpu.xor(value)
		case 6:
			cpu.or(value)
		case 7:
			cpu.cp(value)
		}

		if src == 6 {
			return 8
		}
		return 4
	}
}

func registerALUBlock() {
	for op := uint8(0); op < 8; op++ {
		for src := uint8(0); src < 8; src++ {
			opcodes[0x80+op*8+src] = makeALU(op, src)
		}
	}
}

// applyCBShift dispatches to one of the 8 CB rotate/shift families: RLC,
// RRC, RL, RR, SLA, SRA, SWAP, SRL in that order.
func applyCBShift(cpu *CPU, sub uint8, ptr *uint8) {
	switch sub {
	case 0:
		cpu.rlc(ptr)
	case 1:
		cpu.rrc(ptr)
	case 2:
		cpu.rl(ptr)
	case 3:
		cpu.rr(ptr)
	case 4:
		cpu.sla(ptr)
	case 5:
		cpu.sra(ptr)
	case 6:
		cpu.swap(ptr)
	case 7:
		cpu.srl(ptr)
	}
}

// makeCB generates a single CB-prefixed opcode. The top two bits select
// the family (rotate/shift, BIT, RES, SET), the next three the bit index
// or shift variant, the low three the operand register (6 = (HL)).
func makeCB(opcode uint8) Opcode {
	regIdx := opcode & 0x07
	sub := (opcode >> 3) & 0x07
	family := opcode >> 6

	return func(cpu *CPU) int {
		cpu.bus.Tick(8) // the two opcode bytes (0xCB + this byte)

		switch family {
		case 0: // rotate/shift
			if regIdx == 6 {
				address := cpu.getHL()
				value := cpu.tickRead(address)
				applyCBShift(cpu, sub, &value)
				cpu.tickWrite(address, value)
				return 16
			}
			applyCBShift(cpu, sub, regPtr(cpu, regIdx))
			return 8

		case 1: // BIT n,r
			if regIdx == 6 {
				cpu.bitTest(sub, cpu.tickRead(cpu.getHL()))
				return 12
			}
			cpu.bitTest(sub, *regPtr(cpu, regIdx))
			return 8

		case 2: // RES n,r
			if regIdx == 6 {
				address := cpu.getHL()
				value := cpu.tickRead(address)
				cpu.res(sub, &value)
				cpu.tickWrite(address, value)
				return 16
			}
			cpu.res(sub, regPtr(cpu, regIdx))
			return 8

		default: // SET n,r
			if regIdx == 6 {
				address := cpu.getHL()
				value := cpu.tickRead(address)
				cpu.set(sub, &value)
				cpu.tickWrite(address, value)
				return 16
			}
			cpu.set(sub, regPtr(cpu, regIdx))
			return 8
		}
	}
}

func registerCBTable() {
	for code := 0; code < 256; code++ {
		opcodesCB[code] = makeCB(uint8(code))
	}
}
