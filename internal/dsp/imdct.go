// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// IMDCT computes
//
//	y[i] = sum_k x[k] * cos(2*pi/n * (i + 1/2 + n/4) * (k + 1/2))
//
// for n/2 coefficients x and n outputs y, without any scaling.
//
// The transform is evaluated as a DCT-IV of length n/2, which in turn runs on
// an n/8 point complex FFT between a pre and a post twiddle.
type IMDCT struct {
	n   int
	fft *fourier.CmplxFFT

	pre  []complex128
	post []complex128

	z []complex128
	u []float64
}

// NewIMDCT returns a transform producing n samples. n must be a positive
// multiple of 8.
func NewIMDCT(n int) *IMDCT {
	if n <= 0 || n%8 != 0 {
		panic(fmt.Sprintf("dsp: invalid imdct length %d", n))
	}

	m := n / 2
	h := m / 2

	t := &IMDCT{
		n:    n,
		fft:  fourier.NewCmplxFFT(h),
		pre:  make([]complex128, h),
		post: make([]complex128, h),
		z:    make([]complex128, h),
		u:    make([]float64, m),
	}

	fm := float64(m)
	for k := range h {
		t.pre[k] = cmplx.Exp(complex(0, -math.Pi*float64(4*k+1)/(4*fm)))
		t.post[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/fm))
	}

	return t
}

// Len is the number of output samples.
func (t *IMDCT) Len() int {
	return t.n
}

// Transform writes the inverse transform of src (n/2 values) into dst (n
// values).
func (t *IMDCT) Transform(dst, src []float32) {
	m := t.n / 2
	h := m / 2

	if len(src) < m || len(dst) < t.n {
		panic("dsp: imdct buffer too short")
	}

	for k := range h {
		t.z[k] = complex(float64(src[2*k]), float64(src[m-1-2*k])) * t.pre[k]
	}

	coeffs := t.fft.Coefficients(t.z, t.z)

	for j, c := range coeffs {
		w := c * t.post[j]
		t.u[2*j] = real(w)
		t.u[m-1-2*j] = -imag(w)
	}

	// Unfold the DCT-IV output using its odd and even symmetries.
	q := m / 2
	for i := range q {
		dst[i] = float32(t.u[i+q])
	}
	for i := q; i < 3*q; i++ {
		dst[i] = float32(-t.u[3*q-1-i])
	}
	for i := 3 * q; i < t.n; i++ {
		dst[i] = float32(-t.u[i-3*q])
	}
}
