// Package sound synthesizes the typewriter sounds played while typing and
// gates them behind an explicit unlock of the audio device.
package sound

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chiejihye/pilsa/audio"
	"github.com/chiejihye/pilsa/log"
)

// State is the lock state of the engine.
type State int

const (
	Locked State = iota
	Unlocking
	Running
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocking:
		return "unlocking"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Kind is a class of keystroke with its own sound.
type Kind int

const (
	Key Kind = iota
	Space
	Enter
)

var kindNames = map[Kind]string{Key: "key", Space: "space", Enter: "enter"}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every sound, in a stable order.
func Kinds() []Kind { return []Kind{Key, Space, Enter} }

// Opener creates the audio output. It is called on the first unlock and
// again after a failed one.
type Opener func() (audio.Output, error)

type Engine struct {
	open Opener
	now  func() time.Time

	mu      sync.Mutex
	out     audio.Output
	state   State
	enabled bool
	closed  bool
	speed   SpeedTracker
	synth   *synth
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSeed makes the random variation of sounds reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.synth = newSynth(audio.SampleRate, rand.New(rand.NewPCG(seed, seed)))
	}
}

// WithEnabled sets the initial position of the sound toggle.
func WithEnabled(on bool) Option {
	return func(e *Engine) { e.enabled = on }
}

// New returns a Locked engine. No device is opened until Unlock.
func New(open Opener, opts ...Option) *Engine {
	e := &Engine{
		open:    open,
		now:     time.Now,
		enabled: true,
	}
	for _, o := range opts {
		o(e)
	}
	if e.synth == nil {
		e.synth = newSynth(audio.SampleRate, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	}
	return e
}

// Unlock activates the audio device. It must only be called in response to
// a user action. The engine ends Running when the device reports running,
// and back in Locked otherwise; the next call retries. Unlock blocks on the
// device and is meant to run off the UI goroutine.
func (e *Engine) Unlock() State {
	e.mu.Lock()
	if e.closed || e.state != Locked {
		s := e.state
		e.mu.Unlock()
		return s
	}
	e.state = Unlocking
	out := e.out
	e.mu.Unlock()

	var err error
	if out == nil {
		out, err = e.open()
	}
	if err == nil {
		err = out.Resume()
	}
	running := err == nil && out.State() == audio.Running

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		if out != nil {
			out.Close()
		}
		return Locked
	}
	if out != nil {
		e.out = out
	}
	switch {
	case err != nil:
		log.Debugf("sound unlock: %v", err)
		e.state = Locked
	case !running:
		log.Debugf("sound unlock: device stayed %s", out.State())
		e.state = Locked
	default:
		e.state = Running
	}
	log.SoundState(e.state.String(), e.enabled)
	return e.state
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Audible reports whether keystrokes currently make sound.
func (e *Engine) Audible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled && e.state == Running
}

// ToggleSound flips the enabled flag and returns the new value. The lock
// state is not touched.
func (e *Engine) ToggleSound() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = !e.enabled
	log.SoundState(e.state.String(), e.enabled)
	return e.enabled
}

// Speed is the current typing speed estimate in keys per second.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed.Speed()
}

func (e *Engine) OnKey()   { e.play(Key) }
func (e *Engine) OnSpace() { e.play(Space) }
func (e *Engine) OnEnter() { e.play(Enter) }

// play updates the speed estimate and, when audible, synthesizes and
// plays kind. Failures are logged and dropped.
func (e *Engine) play(kind Kind) {
	e.mu.Lock()
	mod := ModifierFor(e.speed.Observe(e.now()))
	if e.closed || !e.enabled || e.state != Running {
		e.mu.Unlock()
		return
	}
	samples := e.synthesize(kind, mod)
	out := e.out
	e.mu.Unlock()

	if err := out.Play(samples); err != nil {
		log.Debugf("sound %s: %v", kind, err)
	}
}

// synthesize must be called with mu held; the random source is not safe
// for concurrent use.
func (e *Engine) synthesize(kind Kind, mod Modifier) []int16 {
	switch kind {
	case Space:
		return pcm(e.synth.space(mod))
	case Enter:
		return pcm(e.synth.enter())
	}
	return pcm(e.synth.key(mod))
}

// Close releases the audio device. The engine stays silent afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.state = Locked
	if e.out == nil {
		return nil
	}
	return e.out.Close()
}
