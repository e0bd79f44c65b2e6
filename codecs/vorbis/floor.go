// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"math"

	"github.com/ik5/audmux/internal/bits"
)

// floor decodes the spectral envelope of one channel. readChannel must be
// followed by synthesis for the same channel before the next readChannel.
type floor interface {
	// readChannel returns false when the channel is unused in this packet.
	readChannel(bs *bits.ReaderRtl, books []*vorbisCodebook) (bool, error)
	// synthesis renders the curve into out, which holds half a block.
	synthesis(out []float32) error
}

func readFloor(bs *bits.ReaderRtl, ident IdentHeader, numBooks int) (floor, error) {
	typ, err := bs.ReadBitsLeq32(16)
	if err != nil {
		return nil, err
	}

	switch typ {
	case 0:
		return readFloor0(bs, ident, numBooks)
	case 1:
		return readFloor1(bs, numBooks)
	default:
		return nil, wrapErr(ErrInvalidSetup, "floor type %d", typ)
	}
}

// floor0 holds a line spectral pair floor. Only its setup is decoded.
type floor0 struct {
	order       uint32
	rate        uint32
	barkMapSize uint32
	ampBits     uint32
	ampOffset   uint32
	books       []uint8

	barkMapShort []int
	barkMapLong  []int
}

func readFloor0(bs *bits.ReaderRtl, ident IdentHeader, numBooks int) (*floor0, error) {
	var f floor0
	var err error

	fields := []struct {
		dst   *uint32
		width uint32
	}{
		{&f.order, 8},
		{&f.rate, 16},
		{&f.barkMapSize, 16},
		{&f.ampBits, 6},
		{&f.ampOffset, 8},
	}
	for _, fld := range fields {
		if *fld.dst, err = bs.ReadBitsLeq32(fld.width); err != nil {
			return nil, err
		}
	}

	if f.order == 0 || f.rate == 0 || f.barkMapSize == 0 {
		return nil, wrapErr(ErrInvalidSetup, "floor0 order %d rate %d bark map size %d",
			f.order, f.rate, f.barkMapSize)
	}

	n, err := bs.ReadBitsLeq32(4)
	if err != nil {
		return nil, err
	}

	f.books = make([]uint8, n+1)
	for i := range f.books {
		b, err := bs.ReadBitsLeq32(8)
		if err != nil {
			return nil, err
		}
		if int(b) >= numBooks {
			return nil, wrapErr(ErrBadReference, "floor0 codebook %d of %d", b, numBooks)
		}
		f.books[i] = uint8(b)
	}

	f.barkMapShort = barkMap(1<<(ident.Bs0Exp-1), f.rate, f.barkMapSize)
	f.barkMapLong = barkMap(1<<(ident.Bs1Exp-1), f.rate, f.barkMapSize)

	return &f, nil
}

func (f *floor0) readChannel(*bits.ReaderRtl, []*vorbisCodebook) (bool, error) {
	return false, ErrFloor0Unsupported
}

func (f *floor0) synthesis([]float32) error {
	return ErrFloor0Unsupported
}

// barkMap maps each of the n spectral lines of a block to a bark band.
func barkMap(n int, rate, size uint32) []int {
	m := make([]int, n)

	fr := float64(rate)
	step := fr / float64(2*n)
	scale := float64(size) / bark(0.5*fr)

	for i := range m {
		m[i] = min(int(math.Floor(bark(step*float64(i))*scale)), int(size)-1)
	}

	return m
}

func bark(f float64) float64 {
	return 13.1*math.Atan(0.00074*f) + 2.24*math.Atan(f*f/1.85e6) + 1e-4*f
}
