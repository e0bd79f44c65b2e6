// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audmux/audio"
)

// interleavedReader is the part of oggvorbis.Reader the reference source
// uses. Read fills whole frames of interleaved samples and returns the
// number of samples.
type interleavedReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type referenceSource struct {
	dec        interleavedReader
	sampleRate int
	channels   int
	// length is the stream length in frames, or zero when unknown.
	length int64
}

func (s *referenceSource) SampleRate() int { return s.sampleRate }
func (s *referenceSource) Channels() int   { return s.channels }
func (s *referenceSource) Close() error    { return nil }
func (s *referenceSource) BufSize() int    { return 4096 }

// Frames is the stream length in frames, or zero when unknown.
func (s *referenceSource) Frames() int64 { return s.length }

func (s *referenceSource) ReadSamples(dst []float32) (int, error) {
	whole := len(dst) - len(dst)%s.channels
	if whole == 0 {
		return 0, nil
	}
	return s.dec.Read(dst[:whole])
}

// ReferenceDecoder decodes Ogg Vorbis with github.com/jfreymuth/oggvorbis. It
// serves as an independent check on Decoder.
type ReferenceDecoder struct{}

var _ audio.Decoder = ReferenceDecoder{}

func (ReferenceDecoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: reference decoder: %w", err)
	}

	return &referenceSource{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		length:     dec.Length(),
	}, nil
}
