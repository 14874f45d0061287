// Package timing holds the DMG master-clock constants and host-side frame
// pacing helpers. Grounded on the teacher's jeebie/timing package.
package timing

import "time"

// CPUFrequency is the DMG master clock rate in Hz.
const CPUFrequency = 4_194_304

// CyclesPerFrame is the number of T-cycles in one 154-scanline frame at the
// spec-accurate 456 ticks/scanline (see internal/video).
const CyclesPerFrame = 70224

// TargetFPS is the exact DMG frame rate.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration is the wall-clock duration of one frame at TargetFPS.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter paces a host run loop to real time; a no-op implementation is used
// for headless/batch execution.
type Limiter interface {
	WaitForNextFrame()
	Reset()
}

// NewTickerLimiter returns a Limiter backed by a time.Ticker at TargetFPS.
func NewTickerLimiter() Limiter {
	t := time.NewTicker(FrameDuration())
	return &tickerLimiter{ticker: t}
}

type tickerLimiter struct {
	ticker *time.Ticker
}

func (t *tickerLimiter) WaitForNextFrame() { <-t.ticker.C }
func (t *tickerLimiter) Reset()            { t.ticker.Reset(FrameDuration()) }

// NewNoOpLimiter returns a Limiter that never blocks, for headless runs.
func NewNoOpLimiter() Limiter { return noOpLimiter{} }

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}
