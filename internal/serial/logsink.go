// Package serial provides a stub serial (link cable) port. Link-cable
// exchange is a Non-goal (spec.md §1); this sink only accumulates the
// printable bytes a ROM writes to SB/SC, logging them as diagnostics, and
// completes each internal-clock transfer (SC bits 7 and 0 set) immediately
// so SC's start bit clears and the Serial interrupt fires (many test ROMs
// rely on this to make progress). External-clock transfers never complete.
//
// Grounded on the teacher's serial.LogSink.
package serial

import (
	"log/slog"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/corewave/dmgcore/internal/bitutil"
)

// LogSink is the minimal SB/SC device described in spec.md §4.3.
type LogSink struct {
	sb, sc byte
	raise  func(addr.Interrupt)
	line   []byte
	logger *slog.Logger
}

// NewLogSink creates a logging serial stub. raise is called to request the
// Serial interrupt when a transfer completes.
func NewLogSink(raise func(addr.Interrupt)) *LogSink {
	return &LogSink{raise: raise, logger: slog.Default()}
}

// Read implements the IO port callback for SB/SC.
func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		return 0xFF
	}
}

// Write implements the IO port callback for SB/SC.
func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeTransfer()
	}
}

func (s *LogSink) maybeTransfer() {
	if !bitutil.IsSet(7, s.sc) || !bitutil.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else if b >= 0x20 && b < 0x7F {
		s.line = append(s.line, b)
	}

	s.sb = 0xFF
	s.sc = bitutil.Reset(7, s.sc)
	if s.raise != nil {
		s.raise(addr.Serial)
	}
}
