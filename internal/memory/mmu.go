// Package memory implements the DMG address space: the memory bus (C1),
// byte-addressable VRAM/WRAM/OAM/HRAM storage (C3), and the IO port table
// (C4) that fans register reads/writes out to the owning components.
//
// Grounded on the teacher's memory.MMU (region table indexed by the high
// address byte, echo/unusable-region handling, OAM DMA), restructured to
// hold the cartridge, timer, joypad, serial, PIC, video and sound
// components directly instead of the teacher's looser wiring through
// package-level interfaces.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/corewave/dmgcore/internal/addr"
)

type region uint8

const (
	regionROM region = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnusable
	regionIO
	regionHRAM
)

// Cartridge is the ROM/external-RAM interface the bus dispatches
// 0x0000-0x7FFF and 0xA000-0xBFFF accesses to.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Interrupts is the subset of the PIC the bus needs: raising an interrupt,
// and servicing IF/IE reads and writes.
type Interrupts interface {
	Raise(i addr.Interrupt)
	IF() uint8
	SetIF(v uint8)
	IE() uint8
	SetIE(v uint8)
}

// VideoPort is the subset of Display the bus wires into the IO table.
type VideoPort interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// SoundPort is the subset of Sound the bus wires into the IO table.
type SoundPort interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// SerialPort is the minimal SB/SC device interface (C4).
type SerialPort interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Bus is the DMG memory bus (C1): a 64 KiB address space backed by the
// cartridge, flat VRAM/WRAM/OAM/HRAM byte stores, and the IO port table.
type Bus struct {
	cart   Cartridge
	pic    Interrupts
	timer  *Timer
	joypad *Joypad
	serial SerialPort
	video  VideoPort
	sound  SoundPort

	vram [0x2000]uint8 // 0x8000-0x9FFF
	wram [0x2000]uint8 // 0xC000-0xDFFF
	oam  [0x100]uint8  // 0xFE00-0xFEFF (including the unusable tail)
	hram [0x7F]uint8   // 0xFF80-0xFFFE
	io   [0x80]uint8   // 0xFF00-0xFF7F, raw fallback storage

	regionMap [256]region
}

// New wires a Bus to its component implementations. Any of timer/joypad/
// serial/video/sound may be nil; accesses routed to a nil component read
// 0xFF and ignore writes, which is useful for tests exercising a subset of
// the address space.
func New(cart Cartridge, pic Interrupts, timer *Timer, joypad *Joypad, serial SerialPort, video VideoPort, sound SoundPort) *Bus {
	b := &Bus{cart: cart, pic: pic, timer: timer, joypad: joypad, serial: serial, video: video, sound: sound}
	b.initRegionMap()
	return b
}

func (b *Bus) initRegionMap() {
	for i := 0x00; i <= 0x7F; i++ {
		b.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		b.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		b.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		b.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		b.regionMap[i] = regionEcho
	}
	b.regionMap[0xFE] = regionOAM
	b.regionMap[0xFF] = regionIO
}

// Read implements the CPU's Bus interface (C1).
func (b *Bus) Read(address uint16) uint8 {
	switch b.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if b.cart == nil {
			return 0xFF
		}
		return b.cart.Read(address)
	case regionVRAM:
		return b.vram[address-0x8000]
	case regionWRAM:
		return b.wram[address-0xC000]
	case regionEcho:
		return b.wram[address-0xE000]
	case regionOAM:
		if address <= addr.OAMEnd {
			return b.oam[address-addr.OAMStart]
		}
		return 0 // unusable region, spec.md C3
	case regionIO:
		return b.readIO(address)
	default:
		return 0xFF
	}
}

// Write implements the CPU's Bus interface (C1).
func (b *Bus) Write(address uint16, value uint8) {
	switch b.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if b.cart != nil {
			b.cart.Write(address, value)
		}
	case regionVRAM:
		b.vram[address-0x8000] = value
	case regionWRAM:
		b.wram[address-0xC000] = value
	case regionEcho:
		b.wram[address-0xE000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			b.oam[address-addr.OAMStart] = value
		}
		// writes to the unusable tail are dropped, per spec.md C3
	case regionIO:
		b.writeIO(address, value)
	}
}

func (b *Bus) readIO(address uint16) uint8 {
	switch {
	case address == addr.P1:
		if b.joypad != nil {
			return b.joypad.ReadP1()
		}
		return 0xFF
	case address == addr.SB || address == addr.SC:
		if b.serial != nil {
			return b.serial.Read(address)
		}
		return 0xFF
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		if b.timer != nil {
			return b.timer.Read(address)
		}
		return 0xFF
	case address == addr.IF:
		if b.pic != nil {
			return b.pic.IF()
		}
		return 0xFF
	case address == addr.IE:
		if b.pic != nil {
			return b.pic.IE()
		}
		return 0xFF
	case address >= addr.LCDC && address <= addr.WX:
		if b.video != nil {
			return b.video.Read(address)
		}
		return 0xFF
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if b.sound != nil {
			return b.sound.Read(address)
		}
		return 0xFF
	case address >= 0xFF80 && address <= 0xFFFE:
		return b.hram[address-0xFF80]
	default:
		return b.io[address-0xFF00]
	}
}

func (b *Bus) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		if b.joypad != nil {
			b.joypad.WriteP1(value)
		}
	case address == addr.SB || address == addr.SC:
		if b.serial != nil {
			b.serial.Write(address, value)
		}
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		if b.timer != nil {
			b.timer.Write(address, value)
		}
	case address == addr.IF:
		if b.pic != nil {
			b.pic.SetIF(value)
		}
	case address == addr.IE:
		if b.pic != nil {
			b.pic.SetIE(value)
		}
	case address == addr.DMA:
		b.runDMA(value)
	case address >= addr.LCDC && address <= addr.WX:
		if b.video != nil {
			b.video.Write(address, value)
		}
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if b.sound != nil {
			b.sound.Write(address, value)
		}
	case address >= 0xFF80 && address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	default:
		b.io[address-0xFF00] = value
	}
}

// runDMA performs the synchronous 160-byte OAM transfer triggered by a
// write to 0xFF46: the written value is the source address's high byte.
func (b *Bus) runDMA(value uint8) {
	source := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		b.oam[i] = b.Read(source + i)
	}
	slog.Debug("OAM DMA", "source", fmt.Sprintf("0x%04X", source))
}
