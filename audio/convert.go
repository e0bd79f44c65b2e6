// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	goaudio "github.com/go-audio/audio"
)

// Float32ToInt16 clamps x to [-1,1] and scales it to a signed 16-bit sample.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// sampleToFloat32 normalises integer samples to [-1,1).
func sampleToFloat32[S Sample](s S) float32 {
	switch any(s).(type) {
	case int16:
		return float32(s) / (1 << 15)
	case int32:
		return float32(float64(s) / (1 << 31))
	default:
		return float32(s)
	}
}

func goFormat(spec SignalSpec) *goaudio.Format {
	return &goaudio.Format{
		NumChannels: spec.Channels.Count(),
		SampleRate:  int(spec.Rate),
	}
}

// Float32Buffer returns the valid frames of b as an interleaved go-audio
// buffer.
func Float32Buffer[S Sample](b *AudioBuffer[S]) *goaudio.Float32Buffer {
	nCh := b.spec.Channels.Count()
	data := make([]float32, b.nFrames*nCh)

	for ch := range nCh {
		for f, s := range b.Chan(ch) {
			data[f*nCh+ch] = sampleToFloat32(s)
		}
	}

	return &goaudio.Float32Buffer{
		Format:         goFormat(b.spec),
		Data:           data,
		SourceBitDepth: 32,
	}
}

// IntBuffer returns the valid frames of b as interleaved integer PCM of the
// given bit depth (8, 16, 24 or 32), clipping out of range samples.
func IntBuffer[S Sample](b *AudioBuffer[S], bitDepth int) (*goaudio.IntBuffer, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}

	scale := float64(int64(1)<<(bitDepth-1)) - 1
	nCh := b.spec.Channels.Count()
	data := make([]int, b.nFrames*nCh)

	for ch := range nCh {
		for f, s := range b.Chan(ch) {
			v := float64(sampleToFloat32(s))
			v = min(max(v, -1), 1)
			data[f*nCh+ch] = int(v * scale)
		}
	}

	return &goaudio.IntBuffer{
		Format:         goFormat(b.spec),
		Data:           data,
		SourceBitDepth: bitDepth,
	}, nil
}

// Int16Interleaved converts interleaved float samples to 16-bit PCM in
// goaudio form, ready for an encoder.
func Int16Interleaved(src []float32, channels, sampleRate int) *goaudio.IntBuffer {
	data := make([]int, len(src))
	for i, x := range src {
		data[i] = int(Float32ToInt16(x))
	}

	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}
