// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"github.com/ik5/audmux/internal/bits"
)

const residueMaxPasses = 8

type residue struct {
	typ uint16

	begin    uint32
	end      uint32
	partSize uint32

	classifications uint8
	classbook       uint8
	// books[class][pass] is valid when bit pass of used[class] is set.
	books   [][residueMaxPasses]uint8
	used    []uint8
	maxPass int

	// Scratch reused between packets.
	classes []uint8
	buf     []float32
}

func readResidue(bs *bits.ReaderRtl, numBooks int) (*residue, error) {
	typ, err := bs.ReadBitsLeq32(16)
	if err != nil {
		return nil, err
	}
	if typ > 2 {
		return nil, wrapErr(ErrInvalidSetup, "residue type %d", typ)
	}

	r := residue{typ: uint16(typ)}

	if r.begin, err = bs.ReadBitsLeq32(24); err != nil {
		return nil, err
	}
	if r.end, err = bs.ReadBitsLeq32(24); err != nil {
		return nil, err
	}
	if r.end < r.begin {
		return nil, wrapErr(ErrInvalidSetup, "residue ends at %d before it begins at %d", r.end, r.begin)
	}

	partSize, err := bs.ReadBitsLeq32(24)
	if err != nil {
		return nil, err
	}
	r.partSize = partSize + 1

	classifications, err := bs.ReadBitsLeq32(6)
	if err != nil {
		return nil, err
	}
	r.classifications = uint8(classifications + 1)

	classbook, err := bs.ReadBitsLeq32(8)
	if err != nil {
		return nil, err
	}
	if int(classbook) >= numBooks {
		return nil, wrapErr(ErrBadReference, "residue classbook %d of %d", classbook, numBooks)
	}
	r.classbook = uint8(classbook)

	r.used = make([]uint8, r.classifications)
	for i := range r.used {
		low, err := bs.ReadBitsLeq32(3)
		if err != nil {
			return nil, err
		}

		more, err := bs.ReadBool()
		if err != nil {
			return nil, err
		}

		var high uint32
		if more {
			if high, err = bs.ReadBitsLeq32(5); err != nil {
				return nil, err
			}
		}

		r.used[i] = uint8(high<<3 | low)
	}

	r.books = make([][residueMaxPasses]uint8, r.classifications)
	for i, used := range r.used {
		for pass := range residueMaxPasses {
			if used&(1<<pass) == 0 {
				continue
			}

			b, err := bs.ReadBitsLeq32(8)
			if err != nil {
				return nil, err
			}
			if int(b) >= numBooks {
				return nil, wrapErr(ErrBadReference, "residue book %d of %d", b, numBooks)
			}

			r.books[i][pass] = uint8(b)
			r.maxPass = max(r.maxPass, pass)
		}
	}

	return &r, nil
}

// validate checks the codebooks the residue refers to.
func (r *residue) validate(books []*vorbisCodebook) error {
	if books[r.classbook].dims == 0 {
		return wrapErr(ErrInvalidSetup, "residue classbook %d has no dimensions", r.classbook)
	}

	for i, used := range r.used {
		for pass := range residueMaxPasses {
			if used&(1<<pass) == 0 {
				continue
			}

			b := books[r.books[i][pass]]
			if len(b.vq) == 0 {
				return wrapErr(ErrInvalidSetup, "residue book %d has no vector table", r.books[i][pass])
			}
			if r.typ == 0 && r.partSize%uint32(b.dims) != 0 {
				return wrapErr(ErrInvalidSetup, "residue partition %d is not a multiple of %d", r.partSize, b.dims)
			}
		}
	}

	return nil
}

// decode reads the residue vectors of the channels in set into their
// residue buffers. n is the block length.
func (r *residue) decode(bs *bits.ReaderRtl, books []*vorbisCodebook, n int, set []*channel) error {
	half := n / 2

	for _, ch := range set {
		clear(ch.residue[:half])
	}

	if r.typ == 2 {
		return r.decodeInterleaved(bs, books, half, set)
	}

	vectors := make([][]float32, 0, len(set))
	for _, ch := range set {
		if !ch.doNotDecode {
			vectors = append(vectors, ch.residue[:half])
		}
	}
	if len(vectors) == 0 {
		return nil
	}

	return endOfPacketOK(r.decodePartitions(bs, books, vectors))
}

// decodeInterleaved decodes all channels of set as one vector and splits it
// afterwards.
func (r *residue) decodeInterleaved(bs *bits.ReaderRtl, books []*vorbisCodebook, half int, set []*channel) error {
	decode := false
	for _, ch := range set {
		decode = decode || !ch.doNotDecode
	}
	if !decode {
		return nil
	}

	total := half * len(set)
	if cap(r.buf) < total {
		r.buf = make([]float32, total)
	}
	r.buf = r.buf[:total]
	clear(r.buf)

	if err := endOfPacketOK(r.decodePartitions(bs, books, [][]float32{r.buf})); err != nil {
		return err
	}

	stride := len(set)
	for c, ch := range set {
		for i := range half {
			ch.residue[i] = r.buf[i*stride+c]
		}
	}

	return nil
}

// decodePartitions runs the classification and VQ passes over vectors, each
// of the same length.
func (r *residue) decodePartitions(bs *bits.ReaderRtl, books []*vorbisCodebook, vectors [][]float32) error {
	length := uint32(len(vectors[0]))
	begin := min(r.begin, length)
	end := min(r.end, length)

	parts := int((end - begin) / r.partSize)
	if parts == 0 {
		return nil
	}

	classbook := books[r.classbook]
	perWord := classbook.dims

	need := parts * len(vectors)
	if cap(r.classes) < need {
		r.classes = make([]uint8, need)
	}
	r.classes = r.classes[:need]
	clear(r.classes)

	classes := func(v int) []uint8 {
		return r.classes[v*parts : (v+1)*parts]
	}

	for pass := 0; pass <= r.maxPass; pass++ {
		for part := 0; part < parts; part += perWord {
			if pass == 0 {
				for v := range vectors {
					word, err := classbook.readScalar(bs)
					if err != nil {
						return err
					}
					r.spreadClassword(word, classes(v), part, perWord)
				}
			}

			for p := part; p < min(part+perWord, parts); p++ {
				for v, vec := range vectors {
					class := classes(v)[p]
					if r.used[class]&(1<<pass) == 0 {
						continue
					}

					book := books[r.books[class][pass]]
					start := begin + uint32(p)*r.partSize
					out := vec[start : start+r.partSize]

					var err error
					if r.typ == 0 {
						err = addInterleaved(bs, book, out)
					} else {
						err = addSequential(bs, book, out)
					}
					if err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

// spreadClassword stores the base-classifications digits of word, most
// significant first, as the classes of partitions part..part+perWord-1.
func (r *residue) spreadClassword(word uint32, classes []uint8, part, perWord int) {
	nc := uint32(r.classifications)

	for i := perWord - 1; i >= 0; i-- {
		if part+i < len(classes) {
			classes[part+i] = uint8(word % nc)
		}
		word /= nc
	}
}

// addSequential accumulates consecutive vectors into out.
func addSequential(bs *bits.ReaderRtl, book *vorbisCodebook, out []float32) error {
	for i := 0; i < len(out); {
		vq, err := book.readVector(bs)
		if err != nil {
			return err
		}

		i += copyAdd(out[i:], vq)
	}
	return nil
}

// addInterleaved accumulates vectors into out with a stride of
// len(out)/dims.
func addInterleaved(bs *bits.ReaderRtl, book *vorbisCodebook, out []float32) error {
	step := len(out) / book.dims

	for j := range step {
		vq, err := book.readVector(bs)
		if err != nil {
			return err
		}

		for k, v := range vq {
			out[j+k*step] += v
		}
	}
	return nil
}

func copyAdd(dst, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] += src[i]
	}
	return n
}

// endOfPacketOK treats running out of bits as a legal early end of packet.
func endOfPacketOK(err error) error {
	if bits.IsEndOfStream(err) {
		return nil
	}
	return err
}
