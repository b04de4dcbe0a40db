package sound

import "time"

const (
	speedResetGap = 2 * time.Second
	maxSpeed      = 12.0
)

// Modifier scales a sound according to typing speed: fast typing is
// quieter, higher and shorter.
type Modifier struct {
	Volume   float64
	Pitch    float64
	Duration float64
}

// Neutral is the modifier for slow or isolated keystrokes.
var Neutral = Modifier{Volume: 1, Pitch: 1, Duration: 1}

// ModifierFor maps a speed in keys per second to a Modifier.
func ModifierFor(speed float64) Modifier {
	s := min(max(speed, 0), maxSpeed)
	return Modifier{
		Volume:   max(1-s/20, 0.3),
		Pitch:    1 + s/30,
		Duration: max(1-s/25, 0.5),
	}
}

// SpeedTracker keeps an exponentially smoothed keys-per-second estimate.
type SpeedTracker struct {
	last  time.Time
	speed float64
}

// Observe records a keystroke at now and returns the updated speed.
func (t *SpeedTracker) Observe(now time.Time) float64 {
	gap := now.Sub(t.last)
	if t.last.IsZero() || gap <= 0 || gap >= speedResetGap {
		t.speed = 0
	} else {
		t.speed = 0.7*t.speed + 0.3*(1/gap.Seconds())
	}
	t.last = now
	return t.speed
}

func (t *SpeedTracker) Speed() float64 {
	return t.speed
}
