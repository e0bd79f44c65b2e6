// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// VorbisWindow returns the rising half of the Vorbis window for a block of n
// samples:
//
//	w[i] = sin(pi/2 * sin^2((i + 1/2) / (n/2) * pi/2))
func VorbisWindow(n int) []float32 {
	half := n / 2
	w := make([]float32, half)

	for i := range w {
		x := math.Pi / 2 * (float64(i) + 0.5) / float64(half)
		s := math.Sin(x)
		w[i] = float32(math.Sin(math.Pi / 2 * s * s))
	}

	return w
}

// OverlapAdd writes out[i] = prev[i]*win[len-1-i] + cur[i]*win[i]. All four
// slices must have the same length.
func OverlapAdd(out, prev, cur, win []float32) {
	n := len(win)
	if len(out) != n || len(prev) != n || len(cur) != n {
		panic("dsp: overlap-add length mismatch")
	}

	for i := range n {
		out[i] = prev[i]*win[n-1-i] + cur[i]*win[i]
	}
}
