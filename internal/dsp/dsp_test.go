// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func directIMDCT(src []float32) []float64 {
	m := len(src)
	n := 2 * m
	out := make([]float64, n)

	for i := range out {
		var sum float64
		for k, x := range src {
			sum += float64(x) * math.Cos(2*math.Pi/float64(n)*(float64(i)+0.5+float64(n)/4)*(float64(k)+0.5))
		}
		out[i] = sum
	}

	return out
}

func TestIMDCT_MatchesDirectFormula(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	for _, n := range []int{8, 64, 256, 2048} {
		src := make([]float32, n/2)
		for i := range src {
			src[i] = float32(rng.NormFloat64())
		}

		dst := make([]float32, n)
		NewIMDCT(n).Transform(dst, src)

		got := make([]float64, n)
		for i, v := range dst {
			got[i] = float64(v)
		}

		want := directIMDCT(src)
		tol := 1e-4 * math.Sqrt(float64(n))
		if !floats.EqualApprox(got, want, tol) {
			t.Errorf("n=%d: Transform() differs from direct formula by %v", n, floats.Distance(got, want, math.Inf(1)))
		}
	}
}

func TestIMDCT_Reusable(t *testing.T) {
	t.Parallel()

	imdct := NewIMDCT(64)
	src := make([]float32, 32)
	src[3] = 1

	first := make([]float32, 64)
	second := make([]float32, 64)
	imdct.Transform(first, src)
	imdct.Transform(second, src)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Transform() not deterministic at %d: %v != %v", i, first[i], second[i])
		}
	}
}

func TestNewIMDCT_InvalidLength(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("NewIMDCT(12) did not panic")
		}
	}()

	NewIMDCT(12)
}

func TestVorbisWindow_PowerComplementary(t *testing.T) {
	t.Parallel()

	for _, n := range []int{64, 256, 8192} {
		w := VorbisWindow(n)
		if len(w) != n/2 {
			t.Fatalf("len(VorbisWindow(%d)) = %d, want %d", n, len(w), n/2)
		}

		power := make([]float64, len(w))
		ones := make([]float64, len(w))
		for i := range w {
			a, b := float64(w[i]), float64(w[len(w)-1-i])
			power[i] = a*a + b*b
			ones[i] = 1
		}

		if !floats.EqualApprox(power, ones, 1e-6) {
			t.Errorf("n=%d: window is not power complementary", n)
		}

		for i := 1; i < len(w); i++ {
			if w[i] < w[i-1] {
				t.Errorf("n=%d: window not rising at %d", n, i)
				break
			}
		}
	}
}

func TestOverlapAdd(t *testing.T) {
	t.Parallel()

	win := []float32{0.25, 0.5, 1}
	prev := []float32{1, 1, 1}
	cur := []float32{2, 2, 2}
	out := make([]float32, 3)

	OverlapAdd(out, prev, cur, win)

	want := []float32{1 + 0.5, 0.5 + 1, 0.25 + 2}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func BenchmarkIMDCT_2048(b *testing.B) {
	imdct := NewIMDCT(2048)
	src := make([]float32, 1024)
	dst := make([]float32, 2048)
	for i := range src {
		src[i] = float32(i%7) - 3
	}

	b.ReportAllocs()

	for b.Loop() {
		imdct.Transform(dst, src)
	}
}
