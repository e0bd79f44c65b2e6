// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
)

// Sample is the set of sample types an AudioBuffer can hold.
type Sample interface {
	~float32 | ~float64 | ~int16 | ~int32
}

// AudioBuffer holds planar audio: one contiguous plane of Capacity samples
// per channel. Only the first Frames samples of each plane are valid.
//
// A decoder reuses its AudioBuffer across calls, so the contents are only
// valid until the next decode.
type AudioBuffer[S Sample] struct {
	buf       []S
	spec      SignalSpec
	nFrames   int
	nCapacity int
}

// NewAudioBuffer allocates a buffer that can hold duration frames of spec.
// It panics if the buffer could not be addressed.
func NewAudioBuffer[S Sample](duration uint64, spec SignalSpec) *AudioBuffer[S] {
	nChannels := uint64(spec.Channels.Count())

	if nChannels > 0 && duration > uint64(math.MaxInt32)/nChannels {
		panic(fmt.Sprintf("audio: buffer of %d frames x %d channels is too large", duration, nChannels))
	}

	return &AudioBuffer[S]{
		buf:       make([]S, duration*nChannels),
		spec:      spec,
		nCapacity: int(duration),
	}
}

// UnusedAudioBuffer returns an empty buffer with no capacity.
func UnusedAudioBuffer[S Sample]() *AudioBuffer[S] {
	return &AudioBuffer[S]{}
}

// IsUnused reports whether the buffer has no capacity.
func (b *AudioBuffer[S]) IsUnused() bool { return b.nCapacity == 0 }

func (b *AudioBuffer[S]) Spec() SignalSpec { return b.spec }

// Capacity returns the maximum number of frames the buffer can hold.
func (b *AudioBuffer[S]) Capacity() int { return b.nCapacity }

// Frames returns the number of valid frames.
func (b *AudioBuffer[S]) Frames() int { return b.nFrames }

// Clear marks every frame invalid. The sample memory is left as is.
func (b *AudioBuffer[S]) Clear() { b.nFrames = 0 }

// RenderReserve makes n more frames valid. Their contents are whatever the
// planes held before.
func (b *AudioBuffer[S]) RenderReserve(n int) error {
	if n < 0 || b.nFrames+n > b.nCapacity {
		return fmt.Errorf("%w: %d + %d frames > %d", ErrCapacity, b.nFrames, n, b.nCapacity)
	}

	b.nFrames += n

	return nil
}

// RenderReserveAll makes every frame up to the capacity valid.
func (b *AudioBuffer[S]) RenderReserveAll() {
	b.nFrames = b.nCapacity
}

func (b *AudioBuffer[S]) plane(ch int) []S {
	if ch < 0 || ch >= b.spec.Channels.Count() {
		panic(fmt.Sprintf("audio: channel %d out of range", ch))
	}

	start := ch * b.nCapacity
	return b.buf[start : start+b.nCapacity]
}

// Chan returns the valid frames of channel ch.
func (b *AudioBuffer[S]) Chan(ch int) []S {
	return b.plane(ch)[:b.nFrames]
}

// ChanMut returns the valid frames of channel ch for writing. It is the same
// slice as Chan; the separate name marks intent at call sites.
func (b *AudioBuffer[S]) ChanMut(ch int) []S {
	return b.plane(ch)[:b.nFrames]
}

// Planes returns the valid frames of every channel.
func (b *AudioBuffer[S]) Planes() [][]S {
	n := b.spec.Channels.Count()

	planes := make([][]S, n)
	for ch := range n {
		planes[ch] = b.Chan(ch)
	}

	return planes
}

// Truncate limits the buffer to at most n frames.
func (b *AudioBuffer[S]) Truncate(n int) {
	if n < b.nFrames {
		b.nFrames = max(n, 0)
	}
}

// Shift drops the first n frames and moves the rest to the front.
func (b *AudioBuffer[S]) Shift(n int) {
	if n <= 0 {
		return
	}
	if n >= b.nFrames {
		b.Clear()
		return
	}

	for ch := range b.spec.Channels.Count() {
		p := b.plane(ch)
		copy(p, p[n:b.nFrames])
	}

	b.nFrames -= n
}

// Trim drops start frames from the front and end frames from the back.
// Afterwards the buffer holds max(0, Frames-start-end) frames.
func (b *AudioBuffer[S]) Trim(start, end int) {
	// Truncating first leaves fewer frames to move.
	b.Truncate(b.nFrames - end)
	b.Shift(start)
}

// CopyInterleaved writes the valid frames into dst as interleaved samples
// and returns the number of samples written. Only whole frames are copied.
func (b *AudioBuffer[S]) CopyInterleaved(dst []S) int {
	nCh := b.spec.Channels.Count()
	if nCh == 0 {
		return 0
	}

	frames := min(b.nFrames, len(dst)/nCh)

	for ch := range nCh {
		p := b.plane(ch)
		for f := range frames {
			dst[f*nCh+ch] = p[f]
		}
	}

	return frames * nCh
}
