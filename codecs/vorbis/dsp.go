// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"github.com/ik5/audmux/internal/dsp"
)

// channel is the per-channel decode state. floor holds the spectrum once
// the residue has been applied.
type channel struct {
	floor       []float32
	residue     []float32
	doNotDecode bool

	imdct   []float32
	overlap []float32
}

func newChannel(bs1 int) channel {
	return channel{
		floor:   make([]float32, bs1/2),
		residue: make([]float32, bs1/2),
		imdct:   make([]float32, bs1),
		overlap: make([]float32, bs1/2),
	}
}

// lapping holds the transforms and windows of both block sizes.
type lapping struct {
	bs0, bs1 int

	imdctShort, imdctLong *dsp.IMDCT
	winShort, winLong     []float32
}

func newLapping(ident IdentHeader) *lapping {
	bs0 := 1 << ident.Bs0Exp
	bs1 := 1 << ident.Bs1Exp

	l := &lapping{
		bs0:        bs0,
		bs1:        bs1,
		imdctShort: dsp.NewIMDCT(bs0),
		winShort:   dsp.VorbisWindow(bs0),
	}

	if bs1 == bs0 {
		l.imdctLong, l.winLong = l.imdctShort, l.winShort
	} else {
		l.imdctLong = dsp.NewIMDCT(bs1)
		l.winLong = dsp.VorbisWindow(bs1)
	}

	return l
}

// frames returns the number of samples a block of size cur produces after a
// block of size prev.
func frames(prev, cur int) int {
	return (prev + cur) / 4
}

// synth transforms the spectrum of c into the time domain and overlaps it
// with the previous block into out. out is nil when there is no previous
// block.
func (c *channel) synth(l *lapping, prevLong, curLong bool, out []float32) {
	n := l.bs0
	t := l.imdctShort
	if curLong {
		n = l.bs1
		t = l.imdctLong
	}

	t.Transform(c.imdct[:n], c.floor[:n/2])

	if out != nil {
		c.overlapAdd(l, prevLong, curLong, out)
	}

	copy(c.overlap[:n/2], c.imdct[n/2:n])
}

func (c *channel) overlapAdd(l *lapping, prevLong, curLong bool, out []float32) {
	half0 := l.bs0 / 2
	start := (l.bs1 - l.bs0) / 4
	end := start + half0

	switch {
	case prevLong && curLong:
		half := l.bs1 / 2
		dsp.OverlapAdd(out[:half], c.overlap[:half], c.imdct[:half], l.winLong)

	case prevLong:
		copy(out[:start], c.overlap[:start])
		dsp.OverlapAdd(out[start:end], c.overlap[start:end], c.imdct[:half0], l.winShort)

	case curLong:
		dsp.OverlapAdd(out[:half0], c.overlap[:half0], c.imdct[start:end], l.winShort)
		copy(out[half0:], c.imdct[end:l.bs1/2])

	default:
		dsp.OverlapAdd(out[:half0], c.overlap[:half0], c.imdct[:half0], l.winShort)
	}
}
