//go:build !linux

package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// clip is one sound being played by the data callback.
type clip struct {
	data []int16
	pos  atomic.Int64
}

type malgoOutput struct {
	cfg    Config
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	// accessed from the audio thread
	playing atomic.Pointer[[]*clip]

	mu     sync.Mutex
	closed bool
	name   string
}

// Open initializes a miniaudio playback device. The device is created
// stopped, which is reported as Suspended.
func Open(cfg Config) (Output, error) {
	cfg = cfg.withDefaults()
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}

	m := &malgoOutput{cfg: cfg, ctx: ctx}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = uint32(cfg.SampleRate)
	config.PeriodSizeInMilliseconds = uint32(cfg.Latency * 1000)

	dev, err := malgo.InitDevice(ctx.Context, config, malgo.DeviceCallbacks{Data: m.dataCallback})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("malgo device: %w", err)
	}
	m.device = dev

	if infos, err := ctx.Devices(malgo.Playback); err == nil {
		for _, d := range infos {
			if d.IsDefault != 0 {
				m.name = d.Name()
				break
			}
		}
	}
	return m, nil
}

// dataCallback mixes every active clip into the output buffer and drops
// the ones that have finished.
func (m *malgoOutput) dataCallback(pOutput, _ []byte, frameCount uint32) {
	for i := range pOutput {
		pOutput[i] = 0
	}
	clips := m.playing.Load()
	if clips == nil || len(*clips) == 0 {
		return
	}

	n := int(frameCount)
	mix := make([]int32, n)
	var remaining []*clip
	for _, c := range *clips {
		pos := int(c.pos.Load())
		end := min(pos+n, len(c.data))
		for i := pos; i < end; i++ {
			mix[i-pos] += int32(c.data[i])
		}
		c.pos.Store(int64(end))
		if end < len(c.data) {
			remaining = append(remaining, c)
		}
	}
	m.playing.CompareAndSwap(clips, &remaining)

	for i, s := range mix {
		s = min(max(s, -32768), 32767)
		pOutput[i*2] = byte(s)
		pOutput[i*2+1] = byte(s >> 8)
	}
}

func (m *malgoOutput) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.device.IsStarted() {
		return nil
	}
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("malgo start: %w", err)
	}
	return nil
}

func (m *malgoOutput) Suspend() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.playing.Store(nil)
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("malgo stop: %w", err)
	}
	return nil
}

func (m *malgoOutput) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Closed
	}
	if m.device.IsStarted() {
		return Running
	}
	return Suspended
}

func (m *malgoOutput) DeviceName() string {
	return m.name
}

func (m *malgoOutput) Play(samples []int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if !m.device.IsStarted() {
		return fmt.Errorf("malgo: output suspended")
	}
	if len(samples) == 0 {
		return nil
	}

	c := &clip{data: samples}
	for {
		old := m.playing.Load()
		var next []*clip
		if old != nil {
			next = append(next, *old...)
		}
		next = append(next, c)
		if m.playing.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

func (m *malgoOutput) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.playing.Store(nil)
	m.device.Uninit()
	m.ctx.Uninit()
	m.ctx.Free()
	return nil
}
