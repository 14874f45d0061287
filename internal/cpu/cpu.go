// Package cpu implements the DMG instruction decoder and execution core
// (C11): 8-bit/16-bit registers, the full primary/CB/STOP opcode tables,
// flag semantics, and interrupt dispatch.
//
// Grounded on the teacher's jeebie/cpu package (flat register fields,
// ALU flag rules, push/pop/stack helpers), restructured to decode each
// opcode from its bit fields in switch statements (execute, executeCB),
// instead of the teacher's map[uint8]Opcode closure dispatch.
package cpu

import "github.com/corewave/dmgcore/internal/addr"

// Bus is the memory interface the CPU fetches instructions and operands
// through, and reads/writes as part of instruction execution.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Interrupts is the subset of the PIC the CPU consults each tick: whether
// any interrupt is requested (enabled in IE or not), and a priority-ordered
// pop of the highest-priority enabled one.
type Interrupts interface {
	Pending() bool
	GetAndClear() addr.Interrupt
}

// CPU holds the full DMG register file and execution state.
type CPU struct {
	bus Bus
	pic Interrupts

	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	ime    bool
	halted bool
}

// New returns a CPU wired to bus for memory access and pic for interrupt
// queries. Registers start zeroed; callers wanting the post-boot-ROM state
// should set PC/SP/registers explicitly (spec.md models no boot ROM).
func New(bus Bus, pic Interrupts) *CPU {
	return &CPU{bus: bus, pic: pic}
}

// PC returns the program counter, for diagnostics and tests.
func (c *CPU) PC() uint16 { return c.pc }

// SetPC sets the program counter, e.g. to point at cartridge entry 0x0100.
func (c *CPU) SetPC(pc uint16) { c.pc = pc }

// SP returns the stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// SetSP sets the stack pointer.
func (c *CPU) SetSP(sp uint16) { c.sp = sp }

// A returns the accumulator, for diagnostics and tests.
func (c *CPU) A() uint8 { return c.a }

// F returns the flag register, for diagnostics and tests.
func (c *CPU) F() uint8 { return c.f }

// Halted reports whether the CPU is in the HALT-waiting-for-interrupt state.
func (c *CPU) Halted() bool { return c.halted }

// IME reports whether interrupts are globally enabled.
func (c *CPU) IME() bool { return c.ime }

// Step executes the per-tick contract from spec.md §4.10 and returns the
// number of cycles consumed.
func (c *CPU) Step() int {
	if c.halted {
		if c.pic.Pending() {
			c.halted = false
		} else {
			return 4
		}
	}

	if c.ime && c.pic.Pending() {
		i := c.pic.GetAndClear()
		if i != 0 {
			c.ime = false
			c.pushStack(c.pc)
			c.pc = addr.Vector(i)
			return 20
		}
	}

	opcode := c.fetch8()

	var cycles int
	switch opcode {
	case 0xCB:
		cycles = c.executeCB(c.fetch8())
	case 0x10:
		second := c.fetch8()
		if second == 0x00 {
			cycles = c.stop()
		} else {
			cycles = 4
		}
	default:
		cycles = c.execute(opcode)
	}

	c.f &= 0xF0
	return cycles
}

func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	low := c.fetch8()
	high := c.fetch8()
	return combine(high, low)
}

func (c *CPU) pushStack(v uint16) {
	c.sp--
	c.bus.Write(c.sp, uint8(v>>8))
	c.sp--
	c.bus.Write(c.sp, uint8(v))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return combine(high, low)
}

func (c *CPU) stop() int {
	// STOP enters the same halted state as HALT rather than acting as a NOP:
	// the CPU resumes on the next requested interrupt of any kind, not only
	// a joypad interrupt.
	c.halted = true
	return 4
}
