package sound

// tickSequence advances the frame sequencer by one step (512 Hz). Steps
// 0,2,4,6 clock the length counters (256 Hz); steps 2 and 6 additionally
// clock the channel-1 sweep (128 Hz); step 7 clocks the volume envelopes
// (64 Hz). This corrects the distilled spec's "64 Hz sweep" figure to the
// real 128 Hz clock, grounded on the teacher's APU.tickSequence table.
func (s *Sound) tickSequence() {
	switch s.step {
	case 0, 4:
		s.tickLength()
	case 2, 6:
		s.tickLength()
		s.tickSweep()
	case 7:
		s.tickEnvelope()
	}

	s.step = (s.step + 1) % 8
}

func (s *Sound) tickLength() {
	for i := range s.ch {
		ch := &s.ch[i]
		if ch.lengthEnable && ch.length > 0 {
			ch.length--
			if ch.length == 0 {
				ch.enabled = false
			}
		}
	}
}

func (s *Sound) tickSweep() {
	ch := &s.ch[0]
	if !ch.sweepEnabled {
		return
	}

	ch.sweepTimer--
	if ch.sweepTimer > 0 {
		return
	}
	ch.sweepTimer = ch.sweepPeriod
	if ch.sweepTimer == 0 {
		ch.sweepTimer = 8
	}
	if ch.sweepPeriod == 0 {
		return
	}

	newFreq, overflow := sweepTarget(ch)
	if overflow {
		ch.enabled = false
		return
	}
	if ch.sweepStep == 0 {
		return
	}

	ch.shadowFreq = newFreq
	ch.period = newFreq
	s.nr13 = uint8(newFreq)
	s.nr14 = (s.nr14 &^ 0x07) | uint8((newFreq>>8)&0x07)
	s.pushFrequency1()

	if _, overflow := sweepTarget(ch); overflow {
		ch.enabled = false
	}
}

func (s *Sound) tickEnvelope() {
	for _, idx := range []int{0, 1} {
		ch := &s.ch[idx]
		if !ch.dacEnabled || ch.envelopeLatched {
			continue
		}

		pace := ch.envelopePace
		if pace == 0 {
			pace = 8
		}
		if ch.envelopeCounter == 0 {
			ch.envelopeCounter = pace
		}
		ch.envelopeCounter--
		if ch.envelopeCounter > 0 {
			continue
		}

		if ch.envelopeUp {
			if ch.volume < 15 {
				ch.volume++
				ch.envelopeCounter = pace
			} else {
				ch.envelopeLatched = true
			}
		} else {
			if ch.volume > 0 {
				ch.volume--
				ch.envelopeCounter = pace
			} else {
				ch.envelopeLatched = true
			}
		}

		if idx == 0 {
			s.pushVolume1()
		} else {
			s.pushVolume2()
		}
	}
}
