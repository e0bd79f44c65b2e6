// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audmux/audio"
)

// pcmReader is the part of gomp3.Decoder the source uses.
type pcmReader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// pcmSource adapts 16-bit little-endian interleaved stereo PCM to
// audio.Source.
type pcmSource struct {
	dec        pcmReader
	sampleRate int
	// frames is the stream length, or zero when unknown.
	frames int64
	buf    []byte
}

func (s *pcmSource) SampleRate() int { return s.sampleRate }
func (s *pcmSource) Channels() int   { return 2 }

// BufSize is in samples.
func (s *pcmSource) BufSize() int { return cap(s.buf) / 2 }

// Frames is the number of stereo frames the stream decodes to, or zero when
// the source was not seekable.
func (s *pcmSource) Frames() int64 { return s.frames }

// Close is a no-op; the caller owns the reader passed to Decode.
func (s *pcmSource) Close() error { return nil }

func (s *pcmSource) ReadSamples(dst []float32) (int, error) {
	need := 2 * len(dst)
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf)

	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768
	}

	return samples, err
}

// Decoder decodes MP3 to PCM with github.com/hajimehoshi/go-mp3. Output is
// always stereo; mono streams are duplicated to both channels.
type Decoder struct{}

var _ audio.Decoder = Decoder{}

// Decode reads the first frame of r. When r is an io.Seeker the stream
// length is known up front.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3, err)
	}

	src := &pcmSource{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}

	if _, ok := r.(io.Seeker); ok {
		// Length is in bytes of 16-bit stereo PCM.
		src.frames = dec.Length() / 4
	}

	return src, nil
}
