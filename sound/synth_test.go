package sound

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiejihye/pilsa/audio"
)

func testSynth(seed uint64) *synth {
	return newSynth(audio.SampleRate, rand.New(rand.NewPCG(seed, seed)))
}

func peak(buf []int16) int {
	p := 0
	for _, s := range buf {
		p = max(p, int(math.Abs(float64(s))))
	}
	return p
}

func TestSoundsAreAudibleAndBounded(t *testing.T) {
	for _, k := range Kinds() {
		buf := Samples(k, 7)
		require.NotEmpty(t, buf, k.String())
		p := peak(buf)
		assert.Greater(t, p, 100, "%s is silent", k)
		assert.Less(t, p, math.MaxInt16, "%s clips", k)
	}
}

func TestSoundLengths(t *testing.T) {
	rate := float64(audio.SampleRate)
	enter := Samples(Enter, 1)
	assert.InDelta(t, 0.135*rate, float64(len(enter)), 2)

	space := Samples(Space, 1)
	assert.InDelta(t, spaceLength*rate, float64(len(space)), 2)

	// neutral key: up to 3ms offset + 60ms + 20ms tail
	key := Samples(Key, 1)
	assert.GreaterOrEqual(t, float64(len(key)), 0.08*rate-2)
	assert.LessOrEqual(t, float64(len(key)), 0.083*rate+2)
}

func TestFastTypingShortensKeys(t *testing.T) {
	slow := testSynth(3).key(Neutral)
	fast := testSynth(3).key(ModifierFor(12))
	assert.Less(t, len(fast), len(slow))
}

func TestFastTypingIsQuieter(t *testing.T) {
	slow := pcm(testSynth(5).space(Neutral))
	fast := pcm(testSynth(5).space(ModifierFor(12)))
	assert.Less(t, peak(fast), peak(slow))
}

func TestSamplesDeterministic(t *testing.T) {
	assert.Equal(t, Samples(Key, 42), Samples(Key, 42))
	assert.NotEqual(t, Samples(Key, 42), Samples(Key, 43))
}

func TestEnvelope(t *testing.T) {
	e := attackDecay(0.01, 0.002, 0.5, 0.05)
	assert.Zero(t, e.at(0))
	assert.InDelta(t, 0.25, e.at(0.011), 1e-9)
	assert.InDelta(t, 0.5, e.at(0.012), 1e-9)
	mid := e.at(0.031)
	assert.InDelta(t, math.Sqrt(0.5*silenceGain), mid, 1e-6, "geometric midpoint")
	assert.InDelta(t, silenceGain, e.at(1), 1e-12)
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	rate := float64(audio.SampleRate)
	energy := func(freq float64) float64 {
		f := &biquad{kind: lowpass, q: 0.7, freq: fixed(500)}
		f.design(500, rate)
		var sum float64
		for i := range 4410 {
			tt := float64(i) / rate
			y := f.process(math.Sin(2*math.Pi*freq*tt), tt, rate)
			if i > 441 {
				sum += y * y
			}
		}
		return sum
	}
	assert.Greater(t, energy(100), 10*energy(5000))
}

func TestPCMClips(t *testing.T) {
	assert.Equal(t, []int16{math.MaxInt16, -math.MaxInt16, 0, 16384}, pcm([]float64{2, -3, 0, 0.5}))
}
