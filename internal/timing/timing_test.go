package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetFPSMatchesKnownDMGFrameRate(t *testing.T) {
	fps := TargetFPS()
	assert.InDelta(t, 59.7275, fps, 0.001)
}

func TestFrameDurationIsConsistentWithTargetFPS(t *testing.T) {
	d := FrameDuration()
	assert.InDelta(t, float64(1_000_000_000)/TargetFPS(), float64(d), 1)
}

func TestNoOpLimiterNeverBlocks(t *testing.T) {
	l := NewNoOpLimiter()
	done := make(chan struct{})
	go func() {
		l.WaitForNextFrame()
		close(done)
	}()
	<-done // would hang forever if the no-op limiter blocked
	l.Reset()
}

func TestTickerLimiterWaitsForNextFrame(t *testing.T) {
	l := NewTickerLimiter()
	l.WaitForNextFrame()
	l.Reset()
}
