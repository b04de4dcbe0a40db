//go:build linux

package audio

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type pulseOutput struct {
	cfg    Config
	client *pulse.Client

	mu    sync.Mutex
	state State
	sink  string
	wg    sync.WaitGroup
}

// Open connects to the PulseAudio (or PipeWire) server. The returned
// Output is Suspended.
func Open(cfg Config) (Output, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseOutput{cfg: cfg.withDefaults(), client: c}, nil
}

// Resume succeeds once the server reports a default sink to play into.
func (p *pulseOutput) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Closed {
		return ErrClosed
	}
	sink, err := p.client.DefaultSink()
	if err != nil {
		return fmt.Errorf("pulse default sink: %w", err)
	}
	p.sink = sink.Name()
	p.state = Running
	return nil
}

func (p *pulseOutput) Suspend() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Closed {
		return ErrClosed
	}
	p.state = Suspended
	return nil
}

func (p *pulseOutput) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *pulseOutput) DeviceName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink
}

// Play opens a short-lived stream per sound so that consecutive keystrokes
// overlap instead of queueing.
func (p *pulseOutput) Play(samples []int16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case Closed:
		return ErrClosed
	case Suspended:
		return fmt.Errorf("pulse: output suspended")
	}
	if len(samples) == 0 {
		return nil
	}

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := p.client.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(p.cfg.SampleRate),
		pulse.PlaybackLatency(p.cfg.Latency),
		pulse.PlaybackRawOption(func(cp *proto.CreatePlaybackStream) {
			cp.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		stream.Start()
		stream.Drain()
		stream.Stop()
		stream.Close()
	}()
	return nil
}

// Close waits for sounds in flight and disconnects from the server.
func (p *pulseOutput) Close() error {
	p.mu.Lock()
	if p.state == Closed {
		p.mu.Unlock()
		return nil
	}
	p.state = Closed
	p.mu.Unlock()

	p.wg.Wait()
	p.client.Close()
	return nil
}
