// SPDX-License-Identifier: EPL-2.0

package audmux

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmux/audio"
)

// ResampleToMono16 resamples src to targetRate, mixes it down to mono and
// returns every sample as 16-bit PCM together with the output rate.
// bufferSize is the number of samples read per call.
func ResampleToMono16(src audio.Source, targetRate, bufferSize int) ([]int16, int, error) {
	mono := audio.NewMonoMixer(audio.NewResampler(src, targetRate))

	pcm := make([]int16, 0, targetRate)
	buf := make([]float32, max(bufferSize, 1))

	for {
		n, err := mono.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm = append(pcm, audio.Float32ToInt16(x))
		}

		if errors.Is(err, io.EOF) {
			return pcm, targetRate, nil
		}
		if err != nil {
			return pcm, targetRate, fmt.Errorf("audmux: resample: %w", err)
		}
	}
}
