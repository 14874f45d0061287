package serial

import (
	"testing"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/stretchr/testify/assert"
)

func TestReadWriteRoundTripsSB(t *testing.T) {
	s := NewLogSink(nil)
	s.Write(addr.SB, 0x42)
	assert.Equal(t, byte(0x42), s.Read(addr.SB))
}

func TestWritingSCWithoutStartBitDoesNotTransfer(t *testing.T) {
	raised := false
	s := NewLogSink(func(addr.Interrupt) { raised = true })

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x00)

	assert.False(t, raised)
	assert.Equal(t, byte('A'), s.Read(addr.SB))
}

func TestInternalClockTransferCompletesImmediatelyAndRaisesSerial(t *testing.T) {
	var got addr.Interrupt
	s := NewLogSink(func(i addr.Interrupt) { got = i })

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x81) // bit7 start, bit0 internal clock

	assert.Equal(t, addr.Serial, got)
	assert.Equal(t, byte(0xFF), s.Read(addr.SB), "SB resets after transfer")
	assert.Equal(t, byte(0), s.Read(addr.SC)&0x80, "start bit clears once transfer completes")
}

func TestExternalClockTransferIsIgnored(t *testing.T) {
	raised := false
	s := NewLogSink(func(addr.Interrupt) { raised = true })

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x80) // start bit set, but external clock (bit0 clear)

	assert.False(t, raised)
}

func TestUnknownAddressReadsHighByte(t *testing.T) {
	s := NewLogSink(nil)
	assert.Equal(t, byte(0xFF), s.Read(0x1234))
}

func TestLineAccumulatesUntilNewline(t *testing.T) {
	s := NewLogSink(nil)
	for _, b := range []byte("hi\n") {
		s.Write(addr.SB, b)
		s.Write(addr.SC, 0x81)
	}
	assert.Empty(t, s.line, "newline flushes the accumulated line")
}
