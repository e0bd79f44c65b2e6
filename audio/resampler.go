// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmux/internal/dsp"
)

// Resampler converts an interleaved Source to another sample rate with
// Catmull-Rom interpolation. When downsampling, a one-pole low-pass with its
// cutoff at the new Nyquist frequency runs ahead of the interpolator.
type Resampler struct {
	src      Source
	dstRate  int
	channels int
	// step is the number of source frames per output frame.
	step float64

	// hist holds four consecutive source frames, oldest first. Output
	// frames lie between hist[1] and hist[2], pos frames past hist[1].
	hist   [4][]float32
	pos    float64
	primed bool
	// pad counts the copies of the last frame shifted in after EOF.
	pad int

	in    []float32
	inPos int
	eof   bool

	filter bool
	alpha  float32
	lp     []float32
	lpInit bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)
	srcRate := src.SampleRate()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		channels: channels,
		step:     float64(srcRate) / float64(dstRate),
		in:       make([]float32, 0, max(src.BufSize()-src.BufSize()%channels, 256*channels)),
		lp:       make([]float32, channels),
	}

	if dstRate < srcRate {
		r.filter = true
		r.alpha = dsp.OnePoleAlpha(float64(dstRate)/2, float64(srcRate))
	}

	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// readFrame copies the next source frame into dst. It reports false once
// the source is exhausted.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for r.inPos+r.channels > len(r.in) {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in[:cap(r.in)])
		r.in = r.in[:n-n%r.channels]
		r.inPos = 0

		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return false, err
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.filter {
		if !r.lpInit {
			copy(r.lp, dst)
			r.lpInit = true
		}
		for c, x := range dst {
			r.lp[c] += r.alpha * (x - r.lp[c])
			dst[c] = r.lp[c]
		}
	}

	return true, nil
}

// shift drops hist[0] and appends the next frame, repeating the last one
// past the end of the source.
func (r *Resampler) shift() error {
	oldest := r.hist[0]
	copy(r.hist[:], r.hist[1:])
	r.hist[3] = oldest

	ok, err := r.readFrame(r.hist[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.hist[3], r.hist[2])
		r.pad++
	}
	return nil
}

func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.hist[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.hist[0], r.hist[1])

	for i := 2; i < 4; i++ {
		ok, err := r.readFrame(r.hist[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.hist[i], r.hist[i-1])
			r.pad++
		}
	}

	r.primed = true
	return nil
}

// ReadSamples fills dst with whole frames at the target rate. len(dst) must
// be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	want := len(dst) / r.channels
	frames := 0

	for frames < want {
		for r.pos >= 1 {
			r.pos--
			if err := r.shift(); err != nil {
				return frames * r.channels, err
			}
		}

		// hist[1] is past the last source frame.
		if r.pad >= 3 {
			return frames * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[frames*r.channels : (frames+1)*r.channels]
		for c := range out {
			out[c] = dsp.CatmullRom(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}

		frames++
		r.pos += r.step
	}

	return frames * r.channels, nil
}
