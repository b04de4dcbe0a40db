// Package audio is the playback device behind the typewriter sounds: a
// PulseAudio stream on Linux and a miniaudio device elsewhere.
package audio

import (
	"errors"
	"strings"
)

const (
	SampleRate = 44100
	// Latency is the playback buffer target in seconds.
	Latency = 0.03
)

// State mirrors the lifecycle of a browser audio context: created
// suspended, running after a successful Resume, closed for good.
type State int

const (
	Suspended State = iota
	Running
	Closed
)

func (s State) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Closed:
		return "closed"
	}
	return "unknown"
}

var ErrClosed = errors.New("audio: output closed")

// Config describes the PCM stream handed to Play: mono int16 at
// SampleRate frames per second.
type Config struct {
	SampleRate int
	Latency    float64
}

func DefaultConfig() Config {
	return Config{SampleRate: SampleRate, Latency: Latency}
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = SampleRate
	}
	if c.Latency <= 0 {
		c.Latency = Latency
	}
	return c
}

// Output is an audio output device. A new Output is Suspended; sounds can
// only be played once Resume has succeeded.
type Output interface {
	Resume() error
	Suspend() error
	State() State
	// Play queues mono samples and returns without waiting for them to
	// finish. Overlapping calls mix on the device.
	Play(samples []int16) error
	// DeviceName is the human readable name of the sink, when known.
	DeviceName() string
	Close() error
}

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", "bluez", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from a device name whether output goes over
// Bluetooth, where key clicks arrive noticeably late.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
