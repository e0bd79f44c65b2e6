// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer averages every frame of a multi-channel Source into one sample.
type MonoMixer struct {
	src     Source
	scratch []float32
}

// NewMonoMixer wraps src. A mono src is passed through untouched.
func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{src: src}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("mono mixer: %w", err)
	}
	return nil
}

// ReadSamples fills dst with up to len(dst) mono samples.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	nCh := m.src.Channels()
	if nCh <= 1 || len(dst) == 0 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * nCh
	if cap(m.scratch) < need {
		m.scratch = make([]float32, need)
	}
	in := m.scratch[:need]

	n, err := m.src.ReadSamples(in)
	frames := n / nCh

	gain := 1 / float32(nCh)
	for f := range frames {
		var sum float32
		for _, s := range in[f*nCh : (f+1)*nCh] {
			sum += s
		}
		dst[f] = sum * gain
	}

	return frames, err
}

// DownmixPlanar averages the planes of b into dst and returns the number of
// samples written.
func DownmixPlanar[S Sample](b *AudioBuffer[S], dst []float32) int {
	nCh := b.spec.Channels.Count()
	frames := min(b.nFrames, len(dst))
	if nCh == 0 {
		return 0
	}

	clear(dst[:frames])
	for ch := range nCh {
		for f, s := range b.Chan(ch)[:frames] {
			dst[f] += sampleToFloat32(s)
		}
	}

	gain := 1 / float32(nCh)
	for f := range frames {
		dst[f] *= gain
	}

	return frames
}
