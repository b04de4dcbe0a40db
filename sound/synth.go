package sound

import (
	"math"
	"math/rand/v2"
)

// Layer timing and shaping constants, in seconds and linear gain.
const (
	silenceGain = 0.001

	keyBaseDuration = 0.06
	keyNoiseTail    = 0.02
	keyMaxOffset    = 0.003
	keyClickLength  = 0.012
	keyClickDecay   = 0.01
	keyBodyLength   = 0.03

	spaceLength    = 0.08
	spaceDecay     = 0.06
	spaceBodyDecay = 0.04
)

type filterKind int

const (
	lowpass filterKind = iota
	highpass
	bandpass
)

// biquad is a second-order IIR section with RBJ cookbook coefficients, the
// same shapes a Web Audio BiquadFilterNode produces.
type biquad struct {
	kind filterKind
	q    float64
	// freq returns the cutoff at time t (seconds into the sound).
	freq func(t float64) float64

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
	lastFreq           float64
}

func fixed(f float64) func(float64) float64 {
	return func(float64) float64 { return f }
}

func (f *biquad) design(freq, rate float64) {
	freq = min(max(freq, 1), rate/2-1)
	w0 := 2 * math.Pi * freq / rate
	cos := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * f.q)

	var b0, b1, b2 float64
	switch f.kind {
	case lowpass:
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = (1 - cos) / 2
	case highpass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = (1 + cos) / 2
	case bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	}
	a0 := 1 + alpha
	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = -2*cos/a0, (1-alpha)/a0
	f.lastFreq = freq
}

func (f *biquad) process(x, t, rate float64) float64 {
	if freq := f.freq(t); freq != f.lastFreq {
		f.design(freq, rate)
	}
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// point is one automation event on a gain envelope. exp selects an
// exponential ramp from the previous point instead of a linear one.
type point struct {
	t, v float64
	exp  bool
}

type envelope []point

// at returns the gain at time t. Before the first point the gain is zero;
// after the last it holds.
func (e envelope) at(t float64) float64 {
	if len(e) == 0 || t < e[0].t {
		return 0
	}
	for i := 1; i < len(e); i++ {
		p0, p1 := e[i-1], e[i]
		if t >= p1.t {
			continue
		}
		frac := (t - p0.t) / (p1.t - p0.t)
		if p1.exp && p0.v > 0 && p1.v > 0 {
			return p0.v * math.Pow(p1.v/p0.v, frac)
		}
		return p0.v + (p1.v-p0.v)*frac
	}
	return e[len(e)-1].v
}

// attackDecay rises linearly from zero at start to peak and then decays
// exponentially to silence at end.
func attackDecay(start, attack, peak, end float64) envelope {
	return envelope{
		{t: start, v: 0},
		{t: start + attack, v: peak},
		{t: end, v: silenceGain, exp: true},
	}
}

type source interface {
	sample(t float64) float64
}

type noise struct{ rng *rand.Rand }

func (n noise) sample(float64) float64 { return n.rng.Float64()*2 - 1 }

type sine struct{ freq float64 }

func (s sine) sample(t float64) float64 { return math.Sin(2 * math.Pi * s.freq * t) }

// layer is one burst of a sound: a source, a filter chain and a gain
// envelope, audible between start and stop.
type layer struct {
	start, stop float64
	src         source
	filters     []*biquad
	env         envelope
}

type synth struct {
	rate float64
	rng  *rand.Rand
}

func newSynth(rate int, rng *rand.Rand) *synth {
	return &synth{rate: float64(rate), rng: rng}
}

func (s *synth) noise() source { return noise{rng: s.rng} }

// mix renders layers into one buffer long enough for the latest stop.
func (s *synth) mix(layers []layer) []float64 {
	var end float64
	for _, l := range layers {
		end = max(end, l.stop)
	}
	out := make([]float64, int(math.Ceil(end*s.rate)))

	for _, l := range layers {
		for _, f := range l.filters {
			f.design(f.freq(0), s.rate)
		}
		first := int(l.start * s.rate)
		last := min(int(l.stop*s.rate), len(out))
		for i := first; i < last; i++ {
			t := float64(i) / s.rate
			local := t - l.start
			x := l.src.sample(local)
			for _, f := range l.filters {
				x = f.process(x, t, s.rate)
			}
			out[i] += x * l.env.at(t)
		}
	}
	return out
}

// key is an ordinary keystroke: a low thud, a bright click and a faint
// body resonance, all randomly detuned.
func (s *synth) key(m Modifier) []float64 {
	pitch := (0.9 + s.rng.Float64()*0.2) * m.Pitch
	vol := (0.7 + s.rng.Float64()*0.6) * m.Volume
	offset := s.rng.Float64() * keyMaxOffset
	dur := keyBaseDuration * m.Duration

	return s.mix([]layer{
		{
			start: offset,
			stop:  offset + dur + keyNoiseTail,
			src:   s.noise(),
			filters: []*biquad{
				{kind: lowpass, q: 1.2, freq: fixed(700 * pitch)},
				{kind: highpass, q: 0.5, freq: fixed(80)},
			},
			env: attackDecay(offset, 0.002, 0.12*vol, offset+dur),
		},
		{
			start:   offset,
			stop:    offset + keyClickLength,
			src:     s.noise(),
			filters: []*biquad{{kind: bandpass, q: 1.8, freq: fixed(2200 * pitch)}},
			env:     attackDecay(offset, 0.001, 0.06*vol, offset+keyClickDecay),
		},
		{
			start: offset,
			stop:  offset + keyBodyLength,
			src:   sine{freq: 100 * pitch},
			env:   attackDecay(offset, 0.002, 0.02*vol, offset+keyBodyLength),
		},
	})
}

// space is a softer, broader thud with a low body note.
func (s *synth) space(m Modifier) []float64 {
	vol := (0.8 + s.rng.Float64()*0.4) * m.Volume

	return s.mix([]layer{
		{
			stop: spaceLength,
			src:  s.noise(),
			filters: []*biquad{
				{kind: lowpass, q: 0.7, freq: fixed(450 * m.Pitch)},
				{kind: highpass, q: math.Sqrt2 / 2, freq: fixed(50)},
			},
			env: attackDecay(0, 0.004, 0.08*vol, spaceDecay),
		},
		{
			stop: spaceBodyDecay,
			src:  sine{freq: 80 * m.Pitch},
			env:  attackDecay(0, 0.003, 0.015*vol, spaceBodyDecay),
		},
	})
}

// enter is the carriage return: lever click, carriage slide with a falling
// cutoff and the clunk of the stop.
func (s *synth) enter() []float64 {
	slideCutoff := func(t float64) float64 {
		switch {
		case t <= 0.015:
			return 500
		case t >= 0.1:
			return 250
		}
		return 500 + (250-500)*(t-0.015)/(0.1-0.015)
	}

	return s.mix([]layer{
		{
			stop:    0.018,
			src:     s.noise(),
			filters: []*biquad{{kind: bandpass, q: 1.2, freq: fixed(1600)}},
			env:     attackDecay(0, 0.002, 0.1, 0.018),
		},
		{
			start:   0.012,
			stop:    0.12,
			src:     s.noise(),
			filters: []*biquad{{kind: lowpass, q: 0.4, freq: slideCutoff}},
			env: envelope{
				{t: 0.012, v: 0},
				{t: 0.025, v: 0.06},
				{t: 0.08, v: 0.04},
				{t: 0.12, v: silenceGain, exp: true},
			},
		},
		{
			start:   0.1,
			stop:    0.135,
			src:     s.noise(),
			filters: []*biquad{{kind: lowpass, q: 1.5, freq: fixed(350)}},
			env:     attackDecay(0.1, 0.005, 0.12, 0.135),
		},
	})
}

// pcm converts float samples in [-1, 1] to int16, clipping.
func pcm(buf []float64) []int16 {
	out := make([]int16, len(buf))
	for i, v := range buf {
		v = min(max(v, -1), 1)
		out[i] = int16(math.Round(v * math.MaxInt16))
	}
	return out
}
