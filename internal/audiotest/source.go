// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the package tests: synthetic
// PCM sources, bit writers for both bit orders, an Ogg page writer, a
// generator for small but complete Ogg Vorbis streams and MPEG audio frame
// builders.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the sample of channel ch at frame i.
type Waveform func(i, ch int) float32

// Source is an in-memory PCM source with the method set of audio.Source.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Waveform
}

// NewSource returns a source of frames frames drawn from wave.
func NewSource(rate, channels, frames int, wave Waveform) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, wave: wave}
}

// Silence returns a source of zeros.
func Silence(rate, channels, frames int) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return 0 })
}

// Constant returns a source where every sample is v.
func Constant(rate, channels, frames int, v float32) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return v })
}

// Sine returns a full scale sine of freq Hz on every channel.
func Sine(rate, channels, frames int, freq float64) *Source {
	return NewSource(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	})
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }
func (s *Source) Close() error    { return nil }

// Rewind starts the source over.
func (s *Source) Rewind() {
	s.pos = 0
}

// ReadSamples writes whole interleaved frames into dst. The call that
// delivers the last frame also returns io.EOF.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
