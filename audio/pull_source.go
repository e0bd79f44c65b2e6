// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
)

// PullFunc returns the next decoded buffer, or io.EOF when there is none.
// The buffer is only read until the next call.
type PullFunc func() (*AudioBuffer[float32], error)

// PullSource adapts a decode loop to the Source interface.
type PullSource struct {
	pull       PullFunc
	closer     io.Closer
	sampleRate int
	channels   int

	pending []float32
	off     int
	err     error
}

// NewPullSource returns a Source that calls pull whenever it runs out of
// samples. closer, if not nil, is closed by Close.
func NewPullSource(sampleRate, channels int, pull PullFunc, closer io.Closer) *PullSource {
	return &PullSource{
		pull:       pull,
		closer:     closer,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (p *PullSource) SampleRate() int { return p.sampleRate }
func (p *PullSource) Channels() int   { return p.channels }
func (p *PullSource) BufSize() int    { return max(cap(p.pending), 4096) }

func (p *PullSource) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

func (p *PullSource) ReadSamples(dst []float32) (int, error) {
	if p.channels <= 0 || len(dst)%p.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	n := 0

	for n < len(dst) {
		if p.off == len(p.pending) {
			if p.err != nil {
				break
			}
			p.refill()
			continue
		}

		c := copy(dst[n:], p.pending[p.off:])
		p.off += c
		n += c
	}

	if n == 0 && p.err != nil {
		return 0, p.err
	}

	return n, nil
}

func (p *PullSource) refill() {
	buf, err := p.pull()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.EOF
		}
		p.err = err
		return
	}

	need := buf.Frames() * buf.Spec().Channels.Count()
	if cap(p.pending) < need {
		p.pending = make([]float32, need)
	}
	p.pending = p.pending[:need]
	p.off = 0

	buf.CopyInterleaved(p.pending)
}
