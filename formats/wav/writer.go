// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audmux/audio"
)

const (
	formatPCM = 1
	bitDepth  = 16
)

// Write encodes src as 16-bit PCM WAV until src reports io.EOF and returns
// the number of frames written. The encoder patches the chunk sizes when it
// is closed, so w must be seekable.
func Write(w io.WriteSeeker, src audio.Source) (int64, error) {
	channels := src.Channels()
	if channels < 1 {
		return 0, ErrNoChannels
	}

	rate := src.SampleRate()
	enc := wav.NewEncoder(w, rate, bitDepth, channels, formatPCM)

	// The header is only written with the first buffer.
	if err := enc.Write(audio.Int16Interleaved(nil, channels, rate)); err != nil {
		return 0, fmt.Errorf("wav: encode: %w", err)
	}

	buf := make([]float32, readLen(src))

	var samples int64
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			if werr := enc.Write(audio.Int16Interleaved(buf[:n], channels, rate)); werr != nil {
				return samples / int64(channels), fmt.Errorf("wav: encode: %w", werr)
			}
			samples += int64(n)
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return samples / int64(channels), err
		}
	}

	if err := enc.Close(); err != nil {
		return samples / int64(channels), fmt.Errorf("wav: finish: %w", err)
	}

	return samples / int64(channels), nil
}

// readLen is a read size of whole frames, at least one frame long.
func readLen(src audio.Source) int {
	ch := max(src.Channels(), 1)
	n := src.BufSize()
	n -= n % ch
	if n == 0 {
		n = 1024 * ch
	}
	return n
}
