package sound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpeedTrackerSmoothing(t *testing.T) {
	var tr SpeedTracker
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Zero(t, tr.Observe(t0), "first keystroke")
	// 100ms gap is 10 keys/s: 0.7*0 + 0.3*10
	assert.InDelta(t, 3.0, tr.Observe(t0.Add(100*time.Millisecond)), 1e-9)
	// another 100ms: 0.7*3 + 0.3*10
	assert.InDelta(t, 5.1, tr.Observe(t0.Add(200*time.Millisecond)), 1e-9)
	// 500ms gap: 0.7*5.1 + 0.3*2
	assert.InDelta(t, 4.17, tr.Observe(t0.Add(700*time.Millisecond)), 1e-9)
}

func TestSpeedTrackerResets(t *testing.T) {
	var tr SpeedTracker
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Observe(t0)
	tr.Observe(t0.Add(50 * time.Millisecond))
	assert.NotZero(t, tr.Speed())

	assert.Zero(t, tr.Observe(t0.Add(50*time.Millisecond+2*time.Second)), "gap of exactly 2s")

	tr.Observe(t0.Add(3 * time.Second))
	tr.Observe(t0.Add(3*time.Second + 10*time.Millisecond))
	assert.NotZero(t, tr.Speed())
	assert.Zero(t, tr.Observe(t0), "clock going backwards")
}

func TestModifierFor(t *testing.T) {
	tests := []struct {
		speed float64
		want  Modifier
	}{
		{0, Neutral},
		{-3, Neutral},
		{6, Modifier{Volume: 0.7, Pitch: 1.2, Duration: 0.76}},
		{12, Modifier{Volume: 0.4, Pitch: 1.4, Duration: 0.52}},
		{40, Modifier{Volume: 0.4, Pitch: 1.4, Duration: 0.52}},
	}
	for _, tt := range tests {
		got := ModifierFor(tt.speed)
		assert.InDelta(t, tt.want.Volume, got.Volume, 1e-9, "volume at %v", tt.speed)
		assert.InDelta(t, tt.want.Pitch, got.Pitch, 1e-9, "pitch at %v", tt.speed)
		assert.InDelta(t, tt.want.Duration, got.Duration, 1e-9, "duration at %v", tt.speed)
	}
}

func TestModifierFloors(t *testing.T) {
	for s := 0.0; s <= 50; s += 0.5 {
		m := ModifierFor(s)
		assert.GreaterOrEqual(t, m.Volume, 0.3)
		assert.GreaterOrEqual(t, m.Duration, 0.5)
		assert.LessOrEqual(t, m.Pitch, 1.4+1e-9)
	}
}
