package pic

import (
	"testing"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/stretchr/testify/assert"
)

func TestRaiseSetsIFBit(t *testing.T) {
	c := New()
	c.Raise(addr.Timer)
	assert.Equal(t, uint8(addr.Timer), c.IF()&0x1F)
}

func TestIFAlwaysReadsUpperBitsSet(t *testing.T) {
	c := New()
	assert.Equal(t, uint8(0xE0), c.IF())
}

func TestSetIFMasksUpperBits(t *testing.T) {
	c := New()
	c.SetIF(0xFF)
	assert.Equal(t, uint8(0x1F), c.IF()&0x1F)
}

func TestIEReadsBackWhatWasSet(t *testing.T) {
	c := New()
	c.SetIE(0x1F)
	assert.Equal(t, uint8(0x1F), c.IE())
}

func TestPendingIsFalseWithNoRaisedInterrupts(t *testing.T) {
	c := New()
	assert.False(t, c.Pending())
}

func TestPendingIsTrueEvenWhenNotEnabled(t *testing.T) {
	c := New()
	c.Raise(addr.Joypad)
	assert.True(t, c.Pending())
}

func TestGetAndClearReturnsZeroWhenNothingEnabled(t *testing.T) {
	c := New()
	c.Raise(addr.VBlank)
	assert.Equal(t, addr.Interrupt(0), c.GetAndClear())
}

func TestGetAndClearPrefersLowestBit(t *testing.T) {
	c := New()
	c.SetIE(0xFF)
	c.Raise(addr.Joypad)
	c.Raise(addr.VBlank)

	got := c.GetAndClear()
	assert.Equal(t, addr.VBlank, got)
	assert.Equal(t, uint8(addr.Joypad), c.IF()&0x1F, "only the dispatched bit should clear")
}

func TestGetAndClearDrainsAllPendingInPriorityOrder(t *testing.T) {
	c := New()
	c.SetIE(0xFF)
	c.Raise(addr.Timer)
	c.Raise(addr.VBlank)
	c.Raise(addr.LCDC_)

	var order []addr.Interrupt
	for {
		i := c.GetAndClear()
		if i == 0 {
			break
		}
		order = append(order, i)
	}

	assert.Equal(t, []addr.Interrupt{addr.VBlank, addr.LCDC_, addr.Timer}, order)
}
