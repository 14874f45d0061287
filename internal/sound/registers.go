package sound

import "github.com/corewave/dmgcore/internal/addr"

// Read services the 0xFF10-0xFF3F audio register window (C4's IO port
// table delegates this range here). Write-only registers read back 0xFF;
// unused bits float high.
func (s *Sound) Read(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return s.nr10 | 0b1000_0000
	case addr.NR11:
		return s.nr11 | 0b0011_1111
	case addr.NR12:
		return s.nr12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return s.nr14 | 0b1011_1111
	case addr.NR21:
		return s.nr21 | 0b0011_1111
	case addr.NR22:
		return s.nr22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return s.nr24 | 0b1011_1111
	case addr.NR30:
		return s.nr30 | 0b0111_1111
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return s.nr32 | 0b1001_1111
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return s.nr34 | 0b1011_1111
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return s.nr42
	case addr.NR43:
		return s.nr43
	case addr.NR44:
		return s.nr44 | 0b1011_1111
	case addr.NR50:
		return s.nr50
	case addr.NR51:
		return s.nr51
	case addr.NR52:
		status := uint8(0b0111_0000)
		if s.enabled {
			status |= 0x80
		}
		for i := range s.ch {
			if s.ch[i].enabled {
				status |= 1 << i
			}
		}
		return status
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if s.waveRAMLocked() {
			return s.waveRAM[s.ch[2].waveIndex>>1]
		}
		return s.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

// Write services the audio register window. While the unit is powered off
// (NR52 bit 7 clear), only NR52 itself and wave RAM remain writable.
func (s *Sound) Write(address uint16, value uint8) {
	isWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !s.enabled && address != addr.NR52 && !isWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		s.nr10 = value
	case addr.NR11:
		s.nr11 = value
		s.ch[0].length = 64 - uint16(value&0x3F)
	case addr.NR12:
		s.nr12 = value
		resetEnvelope(&s.ch[0], value)
	case addr.NR13:
		s.nr13 = value
	case addr.NR14:
		s.nr14 = value
	case addr.NR21:
		s.nr21 = value
		s.ch[1].length = 64 - uint16(value&0x3F)
	case addr.NR22:
		s.nr22 = value
		resetEnvelope(&s.ch[1], value)
	case addr.NR23:
		s.nr23 = value
	case addr.NR24:
		s.nr24 = value
	case addr.NR30:
		s.nr30 = value
	case addr.NR31:
		s.nr31 = value
		s.ch[2].length = 256 - uint16(value)
	case addr.NR32:
		s.nr32 = value
	case addr.NR33:
		s.nr33 = value
	case addr.NR34:
		s.nr34 = value
	case addr.NR41:
		s.nr41 = value
	case addr.NR42:
		s.nr42 = value
	case addr.NR43:
		s.nr43 = value
	case addr.NR44:
		s.nr44 = value
	case addr.NR50:
		s.nr50 = value
	case addr.NR51:
		s.nr51 = value
	case addr.NR52:
		s.nr52 = value
	}

	if isWaveRAM {
		offset := address - addr.WaveRAMStart
		if s.waveRAMLocked() {
			s.waveRAM[s.ch[2].waveIndex>>1] = value
		} else {
			s.waveRAM[offset] = value
		}
	}

	s.mapRegistersToState()
}

func resetEnvelope(ch *channel, nrx2 uint8) {
	pace := nrx2 & 0x07
	if pace == 0 {
		pace = 8
	}
	ch.envelopeCounter = pace
	ch.envelopeLatched = false
}

// mapRegistersToState re-derives every channel's decoded fields from the
// raw register bank, handling NR52 power-off zeroing and the three
// channels' trigger events (pushing to the sink on each).
//
// Grounded on the teacher's APU.mapRegistersToState, trimmed of channel 4.
func (s *Sound) mapRegistersToState() {
	wasEnabled := s.enabled
	s.enabled = s.nr52&0x80 != 0

	if !s.enabled {
		s.nr10, s.nr11, s.nr12, s.nr13, s.nr14 = 0, 0, 0, 0, 0
		s.nr21, s.nr22, s.nr23, s.nr24 = 0, 0, 0, 0
		s.nr30, s.nr31, s.nr32, s.nr33, s.nr34 = 0, 0, 0, 0, 0
		s.nr41, s.nr42, s.nr43, s.nr44 = 0, 0, 0, 0
		s.nr50, s.nr51 = 0, 0
		for i := range s.ch {
			s.ch[i].enabled = false
		}
		if wasEnabled && s.sink != nil {
			s.sink.SetPlayback3(false)
		}
	}

	for i := range s.ch {
		s.ch[i].right = value3bit(s.nr51, uint8(i))
		s.ch[i].left = value3bit(s.nr51, uint8(i+4))
	}

	s.vinLeft, s.vinRight = s.nr50&0x80 != 0, s.nr50&0x08 != 0
	s.volLeft = (s.nr50 >> 4) & 0x07
	s.volRight = s.nr50 & 0x07

	s.mapChannel1()
	s.mapChannel2()
	s.mapChannel3()

	for i := range s.ch {
		if !s.ch[i].dacEnabled {
			s.ch[i].enabled = false
		}
	}
}

func value3bit(reg, bit uint8) bool { return reg&(1<<bit) != 0 }

func (s *Sound) mapChannel1() {
	ch := &s.ch[0]

	prevSweepDown := ch.sweepDown
	ch.sweepPeriod = (s.nr10 >> 4) & 0x07
	ch.sweepDown = s.nr10&0x08 != 0
	ch.sweepStep = s.nr10 & 0x07
	if !ch.sweepDown && prevSweepDown && (ch.sweepPeriod > 0 || ch.sweepStep > 0) {
		ch.enabled = false
	}

	ch.duty = (s.nr11 >> 6) & 0x03

	ch.volume = (s.nr12 >> 4) & 0x0F
	ch.envelopeUp = s.nr12&0x08 != 0
	ch.envelopePace = s.nr12 & 0x07
	ch.dacEnabled = ch.volume > 0 || ch.envelopeUp

	ch.period = uint16(s.nr14&0x07)<<8 | uint16(s.nr13)

	lengthBefore := ch.length
	triggered := s.nr14&0x80 != 0
	ch.lengthEnable = s.nr14&0x40 != 0

	if triggered {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.envelopeLatched = false
		if ch.envelopePace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = ch.envelopePace
		}
		ch.dutyStep = 0
		ch.freqTimer = squarePeriodCycles(ch)

		ch.sweepEnabled = ch.sweepPeriod > 0 || ch.sweepStep > 0
		ch.sweepTimer = ch.sweepPeriod
		if ch.sweepTimer == 0 {
			ch.sweepTimer = 8
		}
		ch.shadowFreq = ch.period

		if ch.sweepStep != 0 {
			if _, overflow := sweepTarget(ch); overflow {
				ch.enabled = false
			}
		}

		s.nr14 &^= 0x80
		s.pushFrequency1()
		s.pushVolume1()
	}
	applyLengthEnable(ch, lengthBefore, triggered, 64, s.step)
}

func (s *Sound) mapChannel2() {
	ch := &s.ch[1]

	ch.duty = (s.nr21 >> 6) & 0x03
	ch.volume = (s.nr22 >> 4) & 0x0F
	ch.envelopeUp = s.nr22&0x08 != 0
	ch.envelopePace = s.nr22 & 0x07
	ch.dacEnabled = ch.volume > 0 || ch.envelopeUp

	ch.period = uint16(s.nr24&0x07)<<8 | uint16(s.nr23)

	lengthBefore := ch.length
	triggered := s.nr24&0x80 != 0
	ch.lengthEnable = s.nr24&0x40 != 0

	if triggered {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.envelopeLatched = false
		if ch.envelopePace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = ch.envelopePace
		}
		ch.dutyStep = 0
		ch.freqTimer = squarePeriodCycles(ch)
		s.nr24 &^= 0x80
		s.pushFrequency2()
		s.pushVolume2()
	}
	applyLengthEnable(ch, lengthBefore, triggered, 64, s.step)
}

func (s *Sound) mapChannel3() {
	ch := &s.ch[2]

	ch.dacEnabled = s.nr30&0x80 != 0
	ch.volume = (s.nr32 >> 5) & 0x03
	ch.period = uint16(s.nr34&0x07)<<8 | uint16(s.nr33)

	lengthBefore := ch.length
	triggered := s.nr34&0x80 != 0
	ch.lengthEnable = s.nr34&0x40 != 0

	if triggered {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.freqTimer = wavePeriodCycles(ch)
		ch.waveIndex = 0
		s.nr34 &^= 0x80

		s.pushFrequency3()
		s.pushVolume3()
		if s.sink != nil {
			var pattern [16]byte
			copy(pattern[:], s.waveRAM[:])
			s.sink.SetPattern3(pattern)
			s.sink.SetPlayback3(ch.dacEnabled)
		}
	}
	applyLengthEnable(ch, lengthBefore, triggered, 256, s.step)
}

// applyLengthEnable reproduces the teacher's length-enable edge-case
// handling (the "extra clock" when enabling length on an odd sequencer
// step, and the trigger-from-zero reload), see Pan Docs' obscure behavior
// notes on the length counter.
func applyLengthEnable(ch *channel, lengthBefore uint16, triggered bool, maxLength uint16, step int) {
	lengthWasZero := lengthBefore == 0

	if triggered && lengthWasZero {
		ch.length = maxLength
	}

	if !ch.lengthEnable {
		return
	}

	forceClock := lengthWasZero && triggered && ch.length > 0
	if !forceClock {
		return
	}

	if step%2 == 1 && ch.length > 0 {
		ch.length--
		if ch.length == 0 {
			ch.enabled = false
		}
	}
}

func sweepTarget(ch *channel) (newFreq uint16, overflow bool) {
	delta := ch.shadowFreq >> ch.sweepStep
	if ch.sweepDown {
		if delta > ch.shadowFreq {
			newFreq = 0
		} else {
			newFreq = ch.shadowFreq - delta
		}
	} else {
		newFreq = ch.shadowFreq + delta
	}
	return newFreq, newFreq > 2047
}

func (s *Sound) pushFrequency1() {
	if s.sink != nil {
		s.sink.SetFrequency1(frequencyHz(s.ch[0].period, 131072))
	}
}
func (s *Sound) pushVolume1() {
	if s.sink != nil {
		s.sink.SetVolume1(int32(s.ch[0].volume))
	}
}
func (s *Sound) pushFrequency2() {
	if s.sink != nil {
		s.sink.SetFrequency2(frequencyHz(s.ch[1].period, 131072))
	}
}
func (s *Sound) pushVolume2() {
	if s.sink != nil {
		s.sink.SetVolume2(int32(s.ch[1].volume))
	}
}
func (s *Sound) pushFrequency3() {
	if s.sink != nil {
		s.sink.SetFrequency3(frequencyHz(s.ch[2].period, 65536))
	}
}
func (s *Sound) pushVolume3() {
	if s.sink != nil {
		s.sink.SetVolume3(int32(s.ch[2].volume))
	}
}

func frequencyHz(period uint16, base int32) int32 {
	denom := 2048 - int32(period&0x7FF)
	if denom <= 0 {
		return 0
	}
	return base / denom
}
