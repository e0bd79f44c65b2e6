// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"
)

type countingCloser struct{ closed int }

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func pullFrom(t *testing.T, frames ...int) PullFunc {
	t.Helper()

	next := 0
	value := float32(0)

	return func() (*AudioBuffer[float32], error) {
		if next == len(frames) {
			return nil, io.EOF
		}

		buf := NewAudioBuffer[float32](uint64(max(frames[next], 1)), NewSignalSpecWithLayout(8000, LayoutStereo))
		if err := buf.RenderReserve(frames[next]); err != nil {
			t.Fatalf("RenderReserve() error = %v", err)
		}
		next++

		for f := range buf.Frames() {
			buf.ChanMut(0)[f] = value
			buf.ChanMut(1)[f] = -value
			value++
		}

		return buf, nil
	}
}

func TestPullSource_ReadSamples(t *testing.T) {
	t.Parallel()

	closer := &countingCloser{}
	src := NewPullSource(8000, 2, pullFrom(t, 0, 3, 2), closer)

	if src.SampleRate() != 8000 || src.Channels() != 2 {
		t.Errorf("format = %d/%d, want 8000/2", src.SampleRate(), src.Channels())
	}

	var got []float32
	buf := make([]float32, 4)

	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	want := []float32{0, 0, 1, -1, 2, -2, 3, -3, 4, -4}
	if !slices.Equal(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}

	if err := src.Close(); err != nil || closer.closed != 1 {
		t.Errorf("Close() = %v, closed %d times", err, closer.closed)
	}
}

func TestPullSource_InvalidDst(t *testing.T) {
	t.Parallel()

	src := NewPullSource(8000, 2, pullFrom(t, 4), nil)

	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() without closer = %v", err)
	}
}

func TestPullSource_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := NewPullSource(8000, 1, func() (*AudioBuffer[float32], error) { return nil, boom }, nil)

	if _, err := src.ReadSamples(make([]float32, 2)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}
