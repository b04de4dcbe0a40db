package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBluetooth(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"bluez_output.AC_80_0A.a2dp-sink", true},
		{"Sony WH-1000XM4", true},
		{"Built-in Audio Analog Stereo", false},
		{"HDMI / DisplayPort 1 Output", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBluetooth(tt.name), tt.name)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "suspended", Suspended.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, DefaultConfig(), c)
	c = Config{SampleRate: 48000, Latency: 0.1}.withDefaults()
	assert.Equal(t, 48000, c.SampleRate)
}

func TestFakeLifecycle(t *testing.T) {
	f := NewFake()
	assert.Equal(t, Suspended, f.State())
	assert.Error(t, f.Play([]int16{1}), "play while suspended")

	require.NoError(t, f.Resume())
	assert.Equal(t, Running, f.State())
	require.NoError(t, f.Play([]int16{1, 2, 3}))
	assert.Equal(t, [][]int16{{1, 2, 3}}, f.Plays())

	require.NoError(t, f.Suspend())
	assert.Equal(t, Suspended, f.State())

	require.NoError(t, f.Close())
	assert.Equal(t, Closed, f.State())
	assert.ErrorIs(t, f.Resume(), ErrClosed)
	assert.ErrorIs(t, f.Play([]int16{1}), ErrClosed)
}

func TestFakeResumeFailures(t *testing.T) {
	f := NewFake()
	boom := errors.New("no sink")
	f.FailResume(boom)
	assert.ErrorIs(t, f.Resume(), boom)
	assert.Equal(t, Suspended, f.State())

	f.FailResume(nil)
	f.StaySuspended(true)
	assert.NoError(t, f.Resume())
	assert.Equal(t, Suspended, f.State())
	assert.Equal(t, 2, f.Resumes())
}
