// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// CatmullRom interpolates between y1 and y2 at x in [0, 1], using y0 and y3
// as the outer control points.
func CatmullRom(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}

// OnePoleAlpha is the smoothing factor of a one-pole low-pass
//
//	y[n] = y[n-1] + alpha*(x[n] - y[n-1])
//
// with its cutoff at fc Hz for a sample rate of fs Hz.
func OnePoleAlpha(fc, fs float64) float32 {
	if fc <= 0 || fs <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-2*math.Pi*fc/fs))
}
