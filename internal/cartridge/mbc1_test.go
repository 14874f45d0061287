package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func bankedROM(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		for i := 0; i < 0x4000; i++ {
			rom[b*0x4000+i] = byte(b)
		}
	}
	return rom
}

func TestMBC1FixedBankZeroNeverSwitches(t *testing.T) {
	m := newMBC1(bankedROM(4))
	m.Write(0x2000, 3)
	assert.Equal(t, uint8(0), m.Read(0x0000))
}

func TestMBC1DefaultsToBank1(t *testing.T) {
	m := newMBC1(bankedROM(4))
	assert.Equal(t, uint8(1), m.Read(0x4000))
}

func TestMBC1SelectsRequestedBank(t *testing.T) {
	m := newMBC1(bankedROM(4))
	m.Write(0x2000, 3)
	assert.Equal(t, uint8(3), m.Read(0x4000))
}

func TestMBC1BankZeroWriteRemapsToBankOne(t *testing.T) {
	m := newMBC1(bankedROM(4))
	m.Write(0x2000, 2)
	m.Write(0x2000, 0)
	assert.Equal(t, uint8(1), m.Read(0x4000))
}

func TestMBC1OnlyLowFiveBitsOfBankSelectApply(t *testing.T) {
	m := newMBC1(bankedROM(4))
	m.Write(0x2000, 0xE3) // 0xE3 & 0x1F == 3
	assert.Equal(t, uint8(3), m.Read(0x4000))
}

func TestMBC1RAMEnableAndHighWritesAreNoOps(t *testing.T) {
	m := newMBC1(bankedROM(2))
	m.Write(0x0000, 0x0A) // RAM enable, ignored
	m.Write(0x6000, 0x01) // mode select, ignored
	assert.Equal(t, uint8(1), m.Read(0x4000))
}

func TestMBC1ReadOutsideROMRangeReturnsHighByte(t *testing.T) {
	m := newMBC1(bankedROM(2))
	assert.Equal(t, uint8(0xFF), m.Read(0xA000))
}
