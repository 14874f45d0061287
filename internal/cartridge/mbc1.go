package cartridge

// mbc1 implements the MBC1 banking scheme (C2): a fixed bank 0 at
// 0x0000-0x3FFF, a switchable bank at 0x4000-0x7FFF selected by the low 5
// bits of a write to 0x2000-0x3FFF (0 is remapped to 1, per spec.md §4.2),
// and RAM-enable writes below 0x2000 that spec.md explicitly leaves as a
// no-op. Writes at or above 0x4000 other than the bank-select window are
// ignored, matching the distilled spec's simplified MBC1 (no RAM banking /
// mode-select register — that belongs to the full MBC1, out of scope here).
//
// Grounded on the teacher's memory.MBC1, trimmed to the subset spec.md calls
// for (ROM bank select only; RAM-enable and the 0x6000 mode register are
// recognized as MBC1's real behavior but have no observable effect here
// since external RAM banking is not part of this spec).
type mbc1 struct {
	rom     []byte
	romBank uint8
}

func newMBC1(rom []byte) *mbc1 {
	return &mbc1{rom: rom, romBank: 1}
}

func (m *mbc1) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return m.rom[address]
	case address <= 0x7FFF:
		offset := uint32(m.romBank) * 0x4000
		idx := offset + uint32(address-0x4000)
		if int(idx) >= len(m.rom) {
			return 0xFF
		}
		return m.rom[idx]
	default:
		return 0xFF
	}
}

func (m *mbc1) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		// RAM enable: ignored, no external RAM modeled by this spec.
	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	default:
		// Writes at or above 0x4000 (RAM bank/mode select) are ignored.
	}
}
