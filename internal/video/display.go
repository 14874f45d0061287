package video

import (
	"github.com/corewave/dmgcore/internal/addr"
	"github.com/corewave/dmgcore/internal/bitutil"
)

// mode mirrors STAT bits 1:0.
type mode uint8

const (
	modeHBlank mode = 0
	modeVBlank mode = 1
	modeOAM    mode = 2
	modeVRAM   mode = 3
)

const (
	oamTicks    = 80
	vramTicks   = 172
	hblankTicks = 204
	// lyPeriod is the spec-accurate 456 ticks/scanline (154 lines gives
	// 70,224 ticks/frame), superseding the distilled spec's 453 approximation.
	lyPeriod = oamTicks + vramTicks + hblankTicks
)

// Bus is the subset of the memory bus the PPU reads tile/map/OAM data
// through. Addresses passed to both callbacks are absolute CPU addresses
// (0x8000-0x9FFF for ReadVRAM, 0xFE00-0xFE9F for ReadOAM).
type Bus struct {
	ReadVRAM func(address uint16) uint8
	ReadOAM  func(address uint16) uint8
}

// Display is the picture processing unit (C9). It owns the LCDC/STAT/SCX/
// SCY/LY/LYC/WY/WX/BGP/OBP0/OBP1 registers, paces scanlines off an
// accumulated tick counter, and rasterizes one line at a time into its
// framebuffer, handing the result to a PixelSink once per frame.
//
// Grounded on the teacher's video.GPU, restructured around a plain
// OAM->VRAM->HBlank->VBlank tick accumulator instead of the source's
// auxiliary vblank counter.
type Display struct {
	bus   Bus
	raise func(addr.Interrupt)
	sink  PixelSink
	fb    *Framebuffer

	lcdc, stat, scx, scy, ly, lyc, wy, wx, bgp, obp0, obp1 uint8

	curMode    mode
	ticks      int
	windowLine int
	bgLine     [Width]uint8 // color index 0-3 of the background/window pixel just drawn, for sprite priority
	priority   spritePriority
}

// New returns a Display with LY at the start of VBlank, matching the
// teacher's boot-time GPU state (no ROM has run a frame yet).
func New(bus Bus, raise func(addr.Interrupt)) *Display {
	d := &Display{
		bus:     bus,
		raise:   raise,
		fb:      NewFramebuffer(),
		curMode: modeVBlank,
		ly:      144,
	}
	d.stat = uint8(modeVBlank)
	return d
}

// SetBus rewires the VRAM/OAM read callbacks, for callers that must
// construct the Display before the memory bus that owns it (the facade's
// wiring needs the bus to route reads through the Display's register ports).
func (d *Display) SetBus(bus Bus) { d.bus = bus }

// SetSink attaches (or replaces) the pixel sink frames are presented to.
// A nil sink is valid; frames are still rasterized into the internal
// framebuffer and can be read back via Framebuffer.
func (d *Display) SetSink(sink PixelSink) { d.sink = sink }

// Framebuffer exposes the internal pixel store for sinks that pull rather
// than push, and for tests.
func (d *Display) Framebuffer() *Framebuffer { return d.fb }

// Read services LCDC..WX (0xFF40-0xFF4B minus DMA, which the bus owns).
func (d *Display) Read(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return d.lcdc
	case addr.STAT:
		return d.stat | 0x80
	case addr.SCY:
		return d.scy
	case addr.SCX:
		return d.scx
	case addr.LY:
		return d.ly
	case addr.LYC:
		return d.lyc
	case addr.BGP:
		return d.bgp
	case addr.OBP0:
		return d.obp0
	case addr.OBP1:
		return d.obp1
	case addr.WY:
		return d.wy
	case addr.WX:
		return d.wx
	default:
		return 0xFF
	}
}

// Write services LCDC..WX. Writes to LY are ignored (LY is read-only); all
// other registers are directly settable.
func (d *Display) Write(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		wasOn := bitutil.IsSet(7, d.lcdc)
		d.lcdc = value
		if wasOn && !bitutil.IsSet(7, d.lcdc) {
			d.turnOff()
		}
	case addr.STAT:
		d.stat = (d.stat & 0x07) | (value & 0x78)
	case addr.SCY:
		d.scy = value
	case addr.SCX:
		d.scx = value
	case addr.LY:
		// read-only on real hardware
	case addr.LYC:
		d.lyc = value
		d.compareLYC()
	case addr.BGP:
		d.bgp = value
	case addr.OBP0:
		d.obp0 = value
	case addr.OBP1:
		d.obp1 = value
	case addr.WY:
		d.wy = value
	case addr.WX:
		d.wx = value
	}
}

func (d *Display) turnOff() {
	d.ly = 0
	d.ticks = 0
	d.windowLine = 0
	d.setMode(modeHBlank)
	d.fb.Clear()
}

// Tick advances the PPU by cycles T-states, rasterizing scanlines and
// raising VBlank/LCDSTAT interrupts as LY and STAT coincidence dictate.
func (d *Display) Tick(cycles int) {
	if !bitutil.IsSet(7, d.lcdc) {
		return
	}

	d.ticks += cycles

	switch d.curMode {
	case modeOAM:
		if d.ticks >= oamTicks {
			d.ticks -= oamTicks
			d.setMode(modeVRAM)
		}
	case modeVRAM:
		if d.ticks >= vramTicks {
			d.ticks -= vramTicks
			d.drawLine()
			d.setMode(modeHBlank)
			if bitutil.IsSet(3, d.stat) {
				d.raise(addr.LCDC_)
			}
		}
	case modeHBlank:
		if d.ticks >= hblankTicks {
			d.ticks -= hblankTicks
			d.setLY(d.ly + 1)
			if d.ly == 144 {
				d.setMode(modeVBlank)
				d.windowLine = 0
				d.raise(addr.VBlank)
				if d.sink != nil {
					d.sink.Present()
				}
				if bitutil.IsSet(4, d.stat) {
					d.raise(addr.LCDC_)
				}
			} else {
				d.setMode(modeOAM)
				if bitutil.IsSet(5, d.stat) {
					d.raise(addr.LCDC_)
				}
			}
		}
	case modeVBlank:
		if d.ticks >= lyPeriod {
			d.ticks -= lyPeriod
			if d.ly == 153 {
				d.setLY(0)
				d.setMode(modeOAM)
				if bitutil.IsSet(5, d.stat) {
					d.raise(addr.LCDC_)
				}
			} else {
				d.setLY(d.ly + 1)
			}
		}
	}
}

func (d *Display) setMode(m mode) {
	d.curMode = m
	d.stat = (d.stat &^ 0x03) | uint8(m)
}

func (d *Display) setLY(line uint8) {
	d.ly = line
	d.compareLYC()
}

func (d *Display) compareLYC() {
	if d.ly == d.lyc {
		d.stat = bitutil.Set(2, d.stat)
		if bitutil.IsSet(6, d.stat) {
			d.raise(addr.LCDC_)
		}
	} else {
		d.stat = bitutil.Reset(2, d.stat)
	}
}

func shadeFromPalette(palette, colorIndex uint8) uint8 {
	shade := (palette >> (colorIndex * 2)) & 0x03
	return uint8(colorIndexToShade(shade))
}

func (d *Display) drawLine() {
	line := d.ly
	if int(line) >= Height {
		return
	}

	d.drawBackground(line)
	d.drawWindow(line)
	d.drawSprites(line)

	if d.sink != nil {
		for x := 0; x < Width; x++ {
			d.sink.DrawPixel(uint8(x), line, d.fb.At(x, int(line)))
		}
	}
}

func (d *Display) drawBackground(line uint8) {
	if !bitutil.IsSet(0, d.lcdc) {
		gray := shadeFromPalette(d.bgp, 0)
		for x := 0; x < Width; x++ {
			d.fb.DrawPixel(uint8(x), line, gray)
			d.bgLine[x] = 0
		}
		return
	}

	signedTiles := !bitutil.IsSet(4, d.lcdc)
	mapBase := addr.TileMap0
	if bitutil.IsSet(3, d.lcdc) {
		mapBase = addr.TileMap1
	}

	scrolledY := (int(line) + int(d.scy)) & 0xFF
	tileRow := (scrolledY / 8) * 32
	pixelY := scrolledY % 8

	for x := 0; x < Width; x++ {
		mapX := (x + int(d.scx)) & 0xFF
		tileCol := mapX / 8
		tileIndex := d.bus.ReadVRAM(mapBase + uint16(tileRow+tileCol))

		tileAddr := d.tileDataAddr(tileIndex, signedTiles, pixelY)
		low := d.bus.ReadVRAM(tileAddr)
		high := d.bus.ReadVRAM(tileAddr + 1)

		bit := uint8(7 - (mapX % 8))
		colorIndex := pixelValue(low, high, bit)

		d.fb.DrawPixel(uint8(x), line, shadeFromPalette(d.bgp, colorIndex))
		d.bgLine[x] = colorIndex
	}
}

func (d *Display) drawWindow(line uint8) {
	if !bitutil.IsSet(5, d.lcdc) {
		return
	}
	if d.wy > line {
		return
	}

	wx := int(d.wx) - 7
	if wx >= Width {
		return
	}

	signedTiles := !bitutil.IsSet(4, d.lcdc)
	mapBase := addr.TileMap0
	if bitutil.IsSet(6, d.lcdc) {
		mapBase = addr.TileMap1
	}

	tileRow := (d.windowLine / 8) * 32
	pixelY := d.windowLine % 8

	for screenX := 0; screenX < Width; screenX++ {
		winX := screenX - wx
		if winX < 0 {
			continue
		}

		tileCol := winX / 8
		tileIndex := d.bus.ReadVRAM(mapBase + uint16(tileRow+tileCol))

		tileAddr := d.tileDataAddr(tileIndex, signedTiles, pixelY)
		low := d.bus.ReadVRAM(tileAddr)
		high := d.bus.ReadVRAM(tileAddr + 1)

		bit := uint8(7 - (winX % 8))
		colorIndex := pixelValue(low, high, bit)

		d.fb.DrawPixel(uint8(screenX), line, shadeFromPalette(d.bgp, colorIndex))
		d.bgLine[screenX] = colorIndex
	}

	d.windowLine++
}

func (d *Display) tileDataAddr(tileIndex uint8, signed bool, pixelY int) uint16 {
	if signed {
		return uint16(int(addr.TileData2) + int(int8(tileIndex))*16 + pixelY*2)
	}
	return addr.TileData0 + uint16(int(tileIndex)*16+pixelY*2)
}

func pixelValue(low, high, bit uint8) uint8 {
	var v uint8
	if bitutil.IsSet(bit, low) {
		v |= 1
	}
	if bitutil.IsSet(bit, high) {
		v |= 2
	}
	return v
}

// oamEntry mirrors the four raw bytes of one OAM slot.
type oamEntry struct {
	y, x, tile, flags uint8
	index             int
}

func (d *Display) drawSprites(line uint8) {
	if !bitutil.IsSet(1, d.lcdc) {
		return
	}

	height := 8
	if bitutil.IsSet(2, d.lcdc) {
		height = 16
	}

	var onLine []oamEntry
	for i := 0; i < 40; i++ {
		base := addr.OAMStart + uint16(i*4)
		y := int(d.bus.ReadOAM(base)) - 16
		if int(line) < y || int(line) >= y+height {
			continue
		}
		onLine = append(onLine, oamEntry{
			y:     d.bus.ReadOAM(base),
			x:     d.bus.ReadOAM(base + 1),
			tile:  d.bus.ReadOAM(base + 2),
			flags: d.bus.ReadOAM(base + 3),
			index: i,
		})
		if len(onLine) == 10 {
			break
		}
	}

	d.priority.clear()
	for _, s := range onLine {
		x := int(s.x) - 8
		for px := 0; px < 8; px++ {
			d.priority.tryClaim(x+px, s.index, x)
		}
	}

	for _, s := range onLine {
		x := int(s.x) - 8
		y := int(s.y) - 16

		owns := false
		for px := 0; px < 8; px++ {
			if d.priority.ownerAt(x+px) == s.index {
				owns = true
				break
			}
		}
		if !owns {
			continue
		}

		tileIndex := int(s.tile)
		if height == 16 {
			tileIndex &^= 1
		}

		spriteLine := int(line) - y
		if bitutil.IsSet(6, s.flags) {
			spriteLine = height - 1 - spriteLine
		}

		rowOffset := spriteLine * 2
		if height == 16 && spriteLine >= 8 {
			tileIndex++
			rowOffset = (spriteLine - 8) * 2
		}

		tileAddr := addr.TileData0 + uint16(tileIndex*16+rowOffset)
		low := d.bus.ReadVRAM(tileAddr)
		high := d.bus.ReadVRAM(tileAddr + 1)

		palette := d.obp0
		if bitutil.IsSet(4, s.flags) {
			palette = d.obp1
		}
		flipX := bitutil.IsSet(5, s.flags)
		aboveBG := !bitutil.IsSet(7, s.flags)

		for px := 0; px < 8; px++ {
			screenX := x + px
			if screenX < 0 || screenX >= Width || d.priority.ownerAt(screenX) != s.index {
				continue
			}

			bit := uint8(7 - px)
			if flipX {
				bit = uint8(px)
			}
			colorIndex := pixelValue(low, high, bit)
			if colorIndex == 0 {
				continue
			}
			if !aboveBG && d.bgLine[screenX] != 0 {
				continue
			}

			d.fb.DrawPixel(uint8(screenX), line, shadeFromPalette(palette, colorIndex))
		}
	}
}
