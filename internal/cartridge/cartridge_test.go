package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func romImage(size int, cartType byte, title string) []byte {
	data := make([]byte, size)
	copy(data[titleAddress:titleAddress+titleLength], title)
	data[cartridgeTypeAddress] = cartType
	return data
}

func TestNewReturnsEmptyROMOnlyCartridge(t *testing.T) {
	c := New()
	assert.Equal(t, TypeROMOnly, c.Type())
	assert.Equal(t, "", c.Title())
	assert.Equal(t, uint8(0), c.Read(0x0000))
}

func TestNewWithDataRejectsSizeNotMultipleOf32KiB(t *testing.T) {
	_, err := NewWithData(make([]byte, 0x1000))
	require.Error(t, err)
}

func TestNewWithDataRejectsUnsupportedType(t *testing.T) {
	data := romImage(0x8000, 0xFF, "BADTYPE")
	_, err := NewWithData(data)
	require.Error(t, err)
}

func TestNewWithDataDecodesCleanedTitle(t *testing.T) {
	data := romImage(0x8000, byte(TypeROMOnly), "TETRIS\x00\x00\x00")
	c, err := NewWithData(data)
	require.NoError(t, err)
	assert.Equal(t, "TETRIS", c.Title())
}

func TestNewWithDataFallsBackToUntitledWhenHeaderIsBlank(t *testing.T) {
	data := romImage(0x8000, byte(TypeROMOnly), "")
	c, err := NewWithData(data)
	require.NoError(t, err)
	assert.Equal(t, "(untitled)", c.Title())
}

func TestROMOnlyReadsFixedImageAndDropsWrites(t *testing.T) {
	data := romImage(0x8000, byte(TypeROMOnly), "ROMONLY")
	data[0x1000] = 0xAB
	c, err := NewWithData(data)
	require.NoError(t, err)

	assert.Equal(t, uint8(0xAB), c.Read(0x1000))

	c.Write(0x1000, 0xCD)
	assert.Equal(t, uint8(0xAB), c.Read(0x1000), "ROM-only writes must be dropped")
}

func TestNewWithDataSelectsMBC1ForEachMBC1Variant(t *testing.T) {
	for _, ctype := range []Type{TypeMBC1, TypeMBC1RAM, TypeMBC1Bat} {
		data := romImage(0x8000, byte(ctype), "MBC1GAME")
		c, err := NewWithData(data)
		require.NoError(t, err)
		assert.Equal(t, ctype, c.Type())
		if _, ok := c.mbc.(*mbc1); !ok {
			t.Fatalf("type 0x%02X did not select an mbc1 controller", byte(ctype))
		}
	}
}

func TestCleanTitleDropsNonPrintableBytes(t *testing.T) {
	raw := append([]byte("HELLO"), 0x00, 0x00, 0x00, 0x01, 0x02)
	assert.Equal(t, "HELLO", cleanTitle(raw))
}

func TestNewWithDataPreservesCallersByteSlice(t *testing.T) {
	data := romImage(0x8000, byte(TypeROMOnly), "COPY")
	original := append([]byte(nil), data...)

	c, err := NewWithData(data)
	require.NoError(t, err)

	data[0x2000] = 0xEE
	assert.True(t, bytes.Equal(original[:0x2000], c.data[:0x2000]), "mutating caller's slice must not affect the cartridge")
}
