// Package sound implements the audio processing unit (C10): channels 1/2
// (square + sweep/envelope), channel 3 (wave), the 512 Hz/8-step frame
// sequencer, and NR50-NR52 global control. Channel 4 (noise) is a stubbed
// register bank only — no synthesis — per the noise-channel Non-goal.
//
// Grounded on the teacher's jeebie/audio.APU, trimmed of noise-channel
// generation and restructured to additionally push discrete
// frequency/volume events to an AudioSink collaborator on trigger, sweep,
// and envelope steps, the way spec.md's external contract calls for.
package sound

const (
	cyclesPerStep = 8192 // 4194304 Hz / 512 Hz
	waveRAMSize   = 16
)

// AudioSink receives discrete frequency/volume/pattern events as the three
// synthesizable channels trigger or step, per spec.md §4.9 and §6.
type AudioSink interface {
	SetFrequency1(hz int32)
	SetVolume1(v int32)
	SetFrequency2(hz int32)
	SetVolume2(v int32)
	SetFrequency3(hz int32)
	SetVolume3(v int32)
	SetPattern3(bytes [16]byte)
	SetPlayback3(enabled bool)
}

// channel holds the square (0,1) and wave (2) channel state. Channel 4's
// LFSR/noise fields are intentionally absent: it never synthesizes.
type channel struct {
	enabled    bool
	left, right bool

	duty   uint8
	length uint16

	volume uint8

	sweepPeriod  uint8
	sweepDown    bool
	sweepStep    uint8
	sweepEnabled bool
	sweepTimer   uint8
	shadowFreq   uint16

	envelopePace    uint8
	envelopeUp      bool
	envelopeCounter uint8
	envelopeLatched bool

	period       uint16
	lengthEnable bool

	freqTimer int
	dutyStep  uint8
	waveIndex uint8

	dacEnabled bool
}

// Sound is the APU (C10).
type Sound struct {
	enabled           bool
	ch                [3]channel
	vinLeft, vinRight bool
	volLeft, volRight uint8

	step   int
	cycles int

	nr10, nr11, nr12, nr13, nr14 uint8
	nr21, nr22, nr23, nr24       uint8
	nr30, nr31, nr32, nr33, nr34 uint8
	nr41, nr42, nr43, nr44       uint8 // stubbed, no channel 4 synthesis
	nr50, nr51, nr52             uint8
	waveRAM                      [waveRAMSize]uint8

	sink AudioSink

	mixLeftAcc, mixRightAcc int64
	mixAccumCycles          int
	pcmBuffer               []int16
	pcmCursor               int
	pcmCycleAcc             float64
	pcmCyclesPerSample      float64
	hostSampleRate          int
}

// New returns a powered-off Sound unit with no sink attached.
func New(cpuFrequency int) *Sound {
	s := &Sound{hostSampleRate: 44100}
	s.pcmCyclesPerSample = float64(cpuFrequency) / float64(s.hostSampleRate)
	return s
}

// SetSink attaches the collaborator that receives frequency/volume/pattern
// push notifications.
func (s *Sound) SetSink(sink AudioSink) { s.sink = sink }

// Tick advances all channel generators and the frame sequencer by cycles
// T-states.
func (s *Sound) Tick(cycles int) {
	if !s.enabled {
		return
	}

	s.tickGenerators(cycles)

	s.cycles += cycles
	for s.cycles >= cyclesPerStep {
		s.cycles -= cyclesPerStep
		s.tickSequence()
	}
}

func (s *Sound) tickGenerators(cycles int) {
	if cycles <= 0 {
		return
	}

	var left, right int64
	for i := range s.ch {
		ch := &s.ch[i]
		if !ch.enabled || !ch.dacEnabled {
			continue
		}

		var level int64
		if i == 2 {
			level = s.stepWave(ch, cycles)
		} else {
			level = s.stepSquare(ch, cycles)
		}
		if level == 0 {
			continue
		}
		if ch.left {
			left += level
		}
		if ch.right {
			right += level
		}
	}

	s.mixLeftAcc += left * int64(cycles)
	s.mixRightAcc += right * int64(cycles)
	s.mixAccumCycles += cycles
	s.flushMix(cycles)
}

func (s *Sound) flushMix(cycles int) {
	if s.hostSampleRate <= 0 || s.pcmCyclesPerSample == 0 {
		return
	}
	s.pcmCycleAcc += float64(cycles)
	if s.pcmCycleAcc < s.pcmCyclesPerSample {
		return
	}
	s.pcmCycleAcc -= s.pcmCyclesPerSample

	left, right := s.exportMixedSample()
	s.pcmBuffer = append(s.pcmBuffer, left, right)
}

func (s *Sound) exportMixedSample() (int16, int16) {
	if s.mixAccumCycles == 0 {
		return 0, 0
	}
	leftAvg := float64(s.mixLeftAcc) / float64(s.mixAccumCycles)
	rightAvg := float64(s.mixRightAcc) / float64(s.mixAccumCycles)
	left, right := scaleToPCM(leftAvg, s.volLeft), scaleToPCM(rightAvg, s.volRight)
	s.mixLeftAcc, s.mixRightAcc, s.mixAccumCycles = 0, 0, 0
	return left, right
}

const sampleScale = 32767.0 / 15.0

func scaleToPCM(avg float64, masterVol uint8) int16 {
	gain := float64(masterVol+1) / 8.0
	value := avg * gain * sampleScale
	if value > 32767 {
		value = 32767
	} else if value < -32768 {
		value = -32768
	}
	return int16(value)
}

// GetSamples drains up to count stereo sample pairs from the buffer the host
// audio thread pulls from, returning 2*count interleaved left/right values
// with any shortfall zero-filled. The core is the sole writer
// (from Tick); this is the sole reader (from the host callback) — see
// spec.md §5's single-writer/single-reader invariant.
func (s *Sound) GetSamples(count int) []int16 {
	if count <= 0 {
		return nil
	}
	needed := count * 2
	available := len(s.pcmBuffer) - s.pcmCursor
	if available <= 0 {
		return make([]int16, needed)
	}
	out := make([]int16, needed)
	toCopy := available
	if toCopy > needed {
		toCopy = needed
	}
	copy(out, s.pcmBuffer[s.pcmCursor:s.pcmCursor+toCopy])
	s.pcmCursor += toCopy
	if s.pcmCursor >= len(s.pcmBuffer) {
		s.pcmBuffer = s.pcmBuffer[:0]
		s.pcmCursor = 0
	}
	return out
}

var dutyPatterns = [4][8]int64{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

func (s *Sound) stepSquare(ch *channel, cycles int) int64 {
	period := squarePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}
	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.dutyStep = (ch.dutyStep + 1) & 0x7
	}

	if ch.volume == 0 {
		return 0
	}
	level := int64(ch.volume)
	if dutyPatterns[ch.duty&0x3][ch.dutyStep] == 0 {
		return -level
	}
	return level
}

func (s *Sound) stepWave(ch *channel, cycles int) int64 {
	period := wavePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}
	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.waveIndex = (ch.waveIndex + 1) & 0x1F
	}

	sample := int64(s.readWaveSample(ch.waveIndex)) - 8
	switch ch.volume & 0b11 {
	case 0:
		return 0
	case 1:
		return sample
	case 2:
		return sample / 2
	case 3:
		return sample / 4
	default:
		return sample
	}
}

func squarePeriodCycles(ch *channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 4
}

func wavePeriodCycles(ch *channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 2
}

func (s *Sound) readWaveSample(index uint8) uint8 {
	value := s.waveRAM[index>>1]
	if index&1 == 0 {
		return value >> 4
	}
	return value & 0x0F
}

// waveRAMLocked reports whether the CPU's view of wave RAM is redirected to
// the currently playing sample, per Pan Docs' CH3-playback lock behavior.
func (s *Sound) waveRAMLocked() bool {
	return s.enabled && s.ch[2].enabled && s.ch[2].dacEnabled
}
