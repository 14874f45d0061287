package cpu

// execute decodes and runs one primary-table opcode using the canonical
// Z80 bit-field decomposition (x = opcode>>6, y = (opcode>>3)&7,
// z = opcode&7, p = y>>1, q = y&1) and a few nested switches, instead of a
// 256-entry closure table. Semantics for each opcode are grounded on the teacher's
// jeebie/cpu/opcodes.go handlers.
func (c *CPU) execute(opcode uint8) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.executeX0(y, z, q, p)
	case 1:
		return c.executeX1(y, z)
	case 2:
		c.executeAlu(y, c.get8(z))
		return alu8Cycles(z)
	case 3:
		return c.executeX3(y, z, q, p)
	}
	return 4
}

func alu8Cycles(z uint8) int {
	if z == 6 {
		return 8
	}
	return 4
}

func (c *CPU) executeX0(y, z, q, p uint8) int {
	switch z {
	case 0:
		switch y {
		case 0:
			return 4 // NOP
		case 1: // LD (nn),SP
			addr := c.fetch16()
			c.bus.Write(addr, uint8(c.sp))
			c.bus.Write(addr+1, uint8(c.sp>>8))
			return 20
		case 2:
			return 4 // STOP handled in Step
		case 3: // JR d
			offset := int8(c.fetch8())
			c.pc = uint16(int32(c.pc) + int32(offset))
			return 12
		default: // JR cc,d (y=4..7)
			offset := int8(c.fetch8())
			if c.condition(y - 4) {
				c.pc = uint16(int32(c.pc) + int32(offset))
				return 12
			}
			return 8
		}
	case 1:
		if q == 0 {
			c.setRP(p, c.fetch16())
			return 12
		}
		c.addHL(c.getRP(p))
		return 8
	case 2:
		addrReg := [4]func() uint16{c.bc, c.de, c.hl, c.hl}
		target := addrReg[p]()
		if q == 0 {
			c.bus.Write(target, c.a)
		} else {
			c.a = c.bus.Read(target)
		}
		if p == 2 {
			c.setHL(c.hl() + 1)
		} else if p == 3 {
			c.setHL(c.hl() - 1)
		}
		return 8
	case 3:
		if q == 0 {
			c.setRP(p, c.getRP(p)+1)
		} else {
			c.setRP(p, c.getRP(p)-1)
		}
		return 8
	case 4:
		c.set8(y, c.inc8(c.get8(y)))
		if y == 6 {
			return 12
		}
		return 4
	case 5:
		c.set8(y, c.dec8(c.get8(y)))
		if y == 6 {
			return 12
		}
		return 4
	case 6:
		n := c.fetch8()
		c.set8(y, n)
		if y == 6 {
			return 12
		}
		return 8
	case 7:
		return c.executeAccumulatorOp(y)
	}
	return 4
}

func (c *CPU) executeAccumulatorOp(y uint8) int {
	switch y {
	case 0:
		c.a = c.rlc(c.a)
		c.clearFlag(flagZ)
	case 1:
		c.a = c.rrc(c.a)
		c.clearFlag(flagZ)
	case 2:
		c.a = c.rl(c.a)
		c.clearFlag(flagZ)
	case 3:
		c.a = c.rr(c.a)
		c.clearFlag(flagZ)
	case 4:
		c.daa()
	case 5:
		c.a = ^c.a
		c.setFlag(flagN)
		c.setFlag(flagH)
	case 6:
		c.clearFlag(flagN)
		c.clearFlag(flagH)
		c.setFlag(flagC)
	case 7:
		c.setFlagTo(flagC, !c.flag(flagC))
		c.clearFlag(flagN)
		c.clearFlag(flagH)
	}
	return 4
}

func (c *CPU) executeX1(y, z uint8) int {
	if y == 6 && z == 6 {
		c.halted = true
		return 4
	}
	c.set8(y, c.get8(z))
	if y == 6 || z == 6 {
		return 8
	}
	return 4
}

func (c *CPU) executeAlu(y uint8, n uint8) int {
	switch y {
	case 0:
		c.add(n)
	case 1:
		c.adc(n)
	case 2:
		c.sub(n)
	case 3:
		c.sbc(n)
	case 4:
		c.and(n)
	case 5:
		c.xor(n)
	case 6:
		c.or(n)
	case 7:
		c.cp(n)
	}
	return 4
}

func (c *CPU) executeX3(y, z, q, p uint8) int {
	switch z {
	case 0:
		switch y {
		case 0, 1, 2, 3:
			if c.condition(y) {
				c.pc = c.popStack()
				return 20
			}
			return 8
		case 4: // LD (FF00+n),A
			n := c.fetch8()
			c.bus.Write(0xFF00+uint16(n), c.a)
			return 12
		case 5: // ADD SP,d
			c.sp = c.addSPSigned(int8(c.fetch8()))
			return 16
		case 6: // LD A,(FF00+n)
			n := c.fetch8()
			c.a = c.bus.Read(0xFF00 + uint16(n))
			return 12
		case 7: // LD HL,SP+d
			c.setHL(c.addSPSigned(int8(c.fetch8())))
			return 12
		}
	case 1:
		if q == 0 {
			c.setRP2(p, c.popStack())
			return 12
		}
		switch p {
		case 0:
			c.pc = c.popStack()
			return 16
		case 1:
			c.pc = c.popStack()
			c.ime = true
			return 16
		case 2:
			c.pc = c.hl()
			return 4
		case 3:
			c.sp = c.hl()
			return 8
		}
	case 2:
		switch y {
		case 0, 1, 2, 3:
			addr := c.fetch16()
			if c.condition(y) {
				c.pc = addr
				return 16
			}
			return 12
		case 4:
			c.bus.Write(0xFF00+uint16(c.c), c.a)
			return 8
		case 5:
			addr := c.fetch16()
			c.bus.Write(addr, c.a)
			return 16
		case 6:
			c.a = c.bus.Read(0xFF00 + uint16(c.c))
			return 8
		case 7:
			addr := c.fetch16()
			c.a = c.bus.Read(addr)
			return 16
		}
	case 3:
		switch y {
		case 0:
			c.pc = c.fetch16()
			return 16
		case 6:
			c.ime = false
			return 4
		case 7:
			c.ime = true
			return 4
		default:
			return 4 // illegal opcode, treated as a no-op
		}
	case 4:
		if y <= 3 {
			addr := c.fetch16()
			if c.condition(y) {
				c.pushStack(c.pc)
				c.pc = addr
				return 24
			}
			return 12
		}
		return 4 // illegal opcode
	case 5:
		if q == 0 {
			c.pushStack(c.getRP2(p))
			return 16
		}
		if p == 0 {
			addr := c.fetch16()
			c.pushStack(c.pc)
			c.pc = addr
			return 24
		}
		return 4 // illegal opcode
	case 6:
		n := c.fetch8()
		c.executeAlu(y, n)
		return 8
	case 7:
		c.pushStack(c.pc)
		c.pc = uint16(y) * 8
		return 16
	}
	return 4
}

func (c *CPU) condition(y uint8) bool {
	switch y {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	case 3:
		return c.flag(flagC)
	}
	return false
}

// get8/set8 index registers in the canonical r[z] order: B,C,D,E,H,L,(HL),A.
func (c *CPU) get8(idx uint8) uint8 {
	switch idx {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read(c.hl())
	default:
		return c.a
	}
}

func (c *CPU) set8(idx uint8, v uint8) {
	switch idx {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.bus.Write(c.hl(), v)
	default:
		c.a = v
	}
}

// getRP/setRP index the rp[p] table: BC,DE,HL,SP.
func (c *CPU) getRP(p uint8) uint16 {
	switch p {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.sp
	}
}

func (c *CPU) setRP(p uint8, v uint16) {
	switch p {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.sp = v
	}
}

// getRP2/setRP2 index the rp2[p] table used by PUSH/POP: BC,DE,HL,AF.
func (c *CPU) getRP2(p uint8) uint16 {
	switch p {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.af()
	}
}

func (c *CPU) setRP2(p uint8, v uint16) {
	switch p {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.setAF(v)
	}
}
