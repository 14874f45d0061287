package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineMergesHighAndLowBytes(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
}

func TestLowAndHighSplitA16BitValue(t *testing.T) {
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
	assert.Equal(t, uint8(0xAB), High(0xABCD))
}

func TestIsSetReportsEachBit(t *testing.T) {
	var b uint8 = 0b0010_0100
	assert.True(t, IsSet(2, b))
	assert.True(t, IsSet(5, b))
	assert.False(t, IsSet(0, b))
	assert.False(t, IsSet(7, b))
}

func TestIsSet16ReportsEachBit(t *testing.T) {
	var v uint16 = 0x8001
	assert.True(t, IsSet16(0, v))
	assert.True(t, IsSet16(15, v))
	assert.False(t, IsSet16(1, v))
}

func TestSetForcesBitToOne(t *testing.T) {
	assert.Equal(t, uint8(0b0001_0000), Set(4, 0))
	assert.Equal(t, uint8(0b0001_0000), Set(4, 0b0001_0000))
}

func TestResetForcesBitToZero(t *testing.T) {
	assert.Equal(t, uint8(0), Reset(4, 0b0001_0000))
	assert.Equal(t, uint8(0), Reset(4, 0))
}

func TestExtractBitsPullsInclusiveRange(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b1101_0110, 6, 4))
}

func TestExtractBitsSingleBit(t *testing.T) {
	assert.Equal(t, uint8(1), ExtractBits(0b0000_0100, 2, 2))
}
