// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"math"

	"github.com/ik5/audmux/internal/bits"
	"github.com/ik5/audmux/internal/codebook"
)

const (
	codebookSync = 0x564342

	// maxVQValues bounds the unpacked lookup table of one codebook.
	maxVQValues = 1 << 24
)

// vorbisCodebook is a Huffman codebook with an optional vector quantization
// table of dims values per entry.
type vorbisCodebook struct {
	cb   *codebook.Codebook
	dims int
	vq   []float32
}

func readCodebook(bs *bits.ReaderRtl) (*vorbisCodebook, error) {
	sync, err := bs.ReadBitsLeq32(24)
	if err != nil {
		return nil, err
	}
	if sync != codebookSync {
		return nil, wrapErr(ErrInvalidCodebook, "sync word %#06x", sync)
	}

	dims, err := bs.ReadBitsLeq32(16)
	if err != nil {
		return nil, err
	}
	entries, err := bs.ReadBitsLeq32(24)
	if err != nil {
		return nil, err
	}
	if dims == 0 && entries > 0 {
		return nil, wrapErr(ErrInvalidCodebook, "zero dimensions")
	}

	lengths, err := readCodewordLengths(bs, entries)
	if err != nil {
		return nil, err
	}

	lookupType, err := bs.ReadBitsLeq32(4)
	if err != nil {
		return nil, err
	}

	var vq []float32

	switch lookupType {
	case 0:
	case 1, 2:
		vq, err = readLookupTable(bs, lookupType, entries, dims)
		if err != nil {
			return nil, err
		}
	default:
		return nil, wrapErr(ErrInvalidCodebook, "lookup type %d", lookupType)
	}

	codewords, err := codebook.SynthesizeCodewords(lengths)
	if err != nil {
		return nil, wrapErr(ErrInvalidCodebook, "%v", err)
	}

	values := make([]uint32, entries)
	for i := range values {
		values[i] = uint32(i)
	}

	builder := codebook.NewSparseBuilder(codebook.Reverse)
	builder.SetMaxBitsPerBlock(8)

	cb, err := builder.Make(codewords, lengths, values)
	if err != nil {
		return nil, wrapErr(ErrInvalidCodebook, "%v", err)
	}

	return &vorbisCodebook{cb: cb, dims: int(dims), vq: vq}, nil
}

func readCodewordLengths(bs *bits.ReaderRtl, entries uint32) ([]uint8, error) {
	ordered, err := bs.ReadBool()
	if err != nil {
		return nil, err
	}

	lengths := make([]uint8, 0, entries)

	if !ordered {
		sparse, err := bs.ReadBool()
		if err != nil {
			return nil, err
		}

		for range entries {
			used := true
			if sparse {
				if used, err = bs.ReadBool(); err != nil {
					return nil, err
				}
			}

			if !used {
				lengths = append(lengths, 0)
				continue
			}

			l, err := bs.ReadBitsLeq32(5)
			if err != nil {
				return nil, err
			}
			lengths = append(lengths, uint8(l+1))
		}

		return lengths, nil
	}

	l, err := bs.ReadBitsLeq32(5)
	if err != nil {
		return nil, err
	}
	curLen := l + 1

	for uint32(len(lengths)) < entries {
		if curLen > 32 {
			return nil, wrapErr(ErrInvalidCodebook, "codeword length %d", curLen)
		}

		num, err := bs.ReadBitsLeq32(ilog(entries - uint32(len(lengths))))
		if err != nil {
			return nil, err
		}
		if uint64(len(lengths))+uint64(num) > uint64(entries) {
			return nil, wrapErr(ErrInvalidCodebook, "ordered lengths overflow %d entries", entries)
		}

		for range num {
			lengths = append(lengths, uint8(curLen))
		}
		curLen++
	}

	return lengths, nil
}

func readLookupTable(bs *bits.ReaderRtl, lookupType, entries, dims uint32) ([]float32, error) {
	minRaw, err := bs.ReadBitsLeq32(32)
	if err != nil {
		return nil, err
	}
	deltaRaw, err := bs.ReadBitsLeq32(32)
	if err != nil {
		return nil, err
	}
	valueBits, err := bs.ReadBitsLeq32(4)
	if err != nil {
		return nil, err
	}
	valueBits++
	sequenceP, err := bs.ReadBool()
	if err != nil {
		return nil, err
	}

	minValue := float32Unpack(minRaw)
	deltaValue := float32Unpack(deltaRaw)

	var lookupValues uint64
	if lookupType == 1 {
		lookupValues = uint64(lookup1Values(entries, dims))
	} else {
		lookupValues = uint64(entries) * uint64(dims)
	}

	if uint64(entries)*uint64(dims) > maxVQValues {
		return nil, wrapErr(ErrInvalidCodebook, "lookup table of %d x %d values", entries, dims)
	}
	if lookupValues*uint64(valueBits) > bs.BitsLeft() {
		return nil, wrapErr(ErrInvalidCodebook, "%d multiplicands do not fit in the packet", lookupValues)
	}

	mults := make([]uint16, lookupValues)
	for i := range mults {
		v, err := bs.ReadBitsLeq32(valueBits)
		if err != nil {
			return nil, err
		}
		mults[i] = uint16(v)
	}

	vq := make([]float32, uint64(entries)*uint64(dims))

	for e := range entries {
		out := vq[e*dims : (e+1)*dims]
		var last float32

		if lookupType == 1 {
			idxDiv := uint64(1)
			for i := range out {
				off := (uint64(e) / idxDiv) % lookupValues
				v := float32(mults[off])*deltaValue + minValue + last
				out[i] = v
				if sequenceP {
					last = v
				}
				idxDiv *= lookupValues
			}
			continue
		}

		for i := range out {
			v := float32(mults[e*dims+uint32(i)])*deltaValue + minValue + last
			out[i] = v
			if sequenceP {
				last = v
			}
		}
	}

	return vq, nil
}

// readScalar decodes one entry number.
func (c *vorbisCodebook) readScalar(bs *bits.ReaderRtl) (uint32, error) {
	v, _, err := bs.ReadCodebook(c.cb)
	return v, err
}

// readVector decodes one entry and returns its VQ vector.
func (c *vorbisCodebook) readVector(bs *bits.ReaderRtl) ([]float32, error) {
	v, _, err := bs.ReadCodebook(c.cb)
	if err != nil {
		return nil, err
	}

	off := int(v) * c.dims
	if off+c.dims > len(c.vq) {
		return nil, wrapErr(ErrInvalidPacket, "codebook has no vector for entry %d", v)
	}

	return c.vq[off : off+c.dims], nil
}

// ilog is the number of bits needed to store v.
func ilog(v uint32) uint32 {
	n := uint32(0)
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

func float32Unpack(x uint32) float32 {
	mantissa := float64(x & 0x1fffff)
	exp := int((x & 0x7fe00000) >> 21)

	if x&0x80000000 != 0 {
		mantissa = -mantissa
	}

	return float32(math.Ldexp(mantissa, exp-788))
}

// lookup1Values is the largest r such that r^dims <= entries.
func lookup1Values(entries, dims uint32) uint32 {
	if dims == 0 {
		return 0
	}

	r := uint32(math.Floor(math.Exp(math.Log(float64(entries)) / float64(dims))))

	for pow(r+1, dims) <= uint64(entries) {
		r++
	}
	for r > 0 && pow(r, dims) > uint64(entries) {
		r--
	}

	return r
}

func pow(b, e uint32) uint64 {
	acc := uint64(1)
	for range e {
		acc *= uint64(b)
		if acc > math.MaxUint32 {
			return math.MaxUint64
		}
	}
	return acc
}
