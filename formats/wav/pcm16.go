// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audmux/audio"
)

const (
	headerLen = 44
	chunkLen  = 8192
)

// WritePCM16 writes interleaved 16-bit samples as a canonical WAV file. The
// header is written first, so w does not need to be seekable.
func WritePCM16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels < 1 {
		return ErrNoChannels
	}
	if len(samples)%channels != 0 {
		return ErrPartialFrame
	}
	if uint64(len(samples))*2 > math.MaxUint32-headerLen {
		return ErrTooLarge
	}

	blockAlign := uint16(channels) * 2
	dataSize := uint32(len(samples) * 2)

	header := make([]byte, headerLen)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], headerLen-8+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*uint32(blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitDepth)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}

	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, 2*min(len(samples), chunkLen))

	for i := 0; i < len(samples); i += chunkLen {
		chunk := samples[i:min(i+chunkLen, len(samples))]
		buf = buf[:2*len(chunk)]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[2*j:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("wav: write data: %w", err)
		}
	}

	return nil
}

// ReadAll16 drains src and returns its samples as interleaved 16-bit PCM.
func ReadAll16(src audio.Source) ([]int16, error) {
	buf := make([]float32, readLen(src))

	var out []int16
	for {
		n, err := src.ReadSamples(buf)
		for _, x := range buf[:n] {
			out = append(out, audio.Float32ToInt16(x))
		}

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
