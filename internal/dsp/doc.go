// SPDX-License-Identifier: EPL-2.0

// Package dsp holds the signal processing kernels of the Vorbis synthesis
// stage: an unscaled inverse MDCT built on a quarter length complex FFT, the
// Vorbis power sine window and windowed overlap-add. It also carries the
// Catmull-Rom kernel and one-pole low-pass used by the resampler.
package dsp
