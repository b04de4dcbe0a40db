package sound

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/chiejihye/pilsa/audio"
)

const (
	bitsPerSample = 16
	blockSize     = 4096
)

// Samples synthesizes one sound at typing speed zero. The same seed gives
// the same samples.
func Samples(kind Kind, seed uint64) []int16 {
	s := newSynth(audio.SampleRate, rand.New(rand.NewPCG(seed, seed)))
	switch kind {
	case Space:
		return pcm(s.space(Neutral))
	case Enter:
		return pcm(s.enter())
	}
	return pcm(s.key(Neutral))
}

// Render writes kind to w as a mono 16-bit FLAC stream.
func Render(kind Kind, w io.Writer) error {
	return encodeFLAC(w, Samples(kind, 1))
}

// RenderAll writes key.flac, space.flac and enter.flac into dir and returns
// their paths.
func RenderAll(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating render directory: %w", err)
	}
	var paths []string
	for _, k := range Kinds() {
		p := filepath.Join(dir, k.String()+".flac")
		f, err := os.Create(p)
		if err != nil {
			return paths, err
		}
		err = Render(k, f)
		// the encoder closes f itself on success
		if cerr := f.Close(); err == nil && !errors.Is(cerr, os.ErrClosed) {
			err = cerr
		}
		if err != nil {
			return paths, fmt.Errorf("rendering %s: %w", k, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func encodeFLAC(w io.Writer, samples []int16) error {
	info := &meta.StreamInfo{
		BlockSizeMin:  blockSize,
		BlockSizeMax:  blockSize,
		SampleRate:    audio.SampleRate,
		NChannels:     1,
		BitsPerSample: bitsPerSample,
		NSamples:      uint64(len(samples)),
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)

	for i := 0; i < len(samples); i += blockSize {
		block := samples[i:min(i+blockSize, len(samples))]
		samples32 := make([]int32, len(block))
		for j, s := range block {
			samples32[j] = int32(s)
		}
		f := &frame.Frame{
			Header: frame.Header{
				BlockSize:     uint16(len(block)),
				SampleRate:    audio.SampleRate,
				Channels:      frame.ChannelsMono,
				BitsPerSample: bitsPerSample,
			},
			Subframes: []*frame.Subframe{{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples32,
				NSamples:  len(block),
			}},
		}
		if err := enc.WriteFrame(f); err != nil {
			return fmt.Errorf("writing flac frame: %w", err)
		}
	}
	return enc.Close()
}
