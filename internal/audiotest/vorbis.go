// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
	"math/bits"
)

// Parameters of the setup written by VorbisStream.SetupPacket.
const (
	// VorbisResidueEnd is where residue decoding stops in the interleaved
	// vector.
	VorbisResidueEnd = 64
	// VorbisPartSize is the residue partition size.
	VorbisPartSize = 16
	// vorbisRangeBits puts the second floor1 point at x = 128.
	vorbisRangeBits = 7
	// vorbisFloorMidX is the x of the floor1 point added by its partition.
	vorbisFloorMidX = 64
)

// VorbisStream describes a minimal Vorbis stream: two one-bit codebooks, a
// floor1 with one bookless partition, a type 2 residue and a short and a
// long mode.
type VorbisStream struct {
	Channels   int
	SampleRate uint32
	Bs0Exp     uint8
	Bs1Exp     uint8

	// Coupled adds a coupling step with channel 1 as magnitude and channel
	// 0 as angle.
	Coupled bool
}

// IdentPacket returns the identification header.
func (v VorbisStream) IdentPacket() []byte {
	p := make([]byte, 30)
	p[0] = 1
	copy(p[1:], "vorbis")
	p[11] = byte(v.Channels)
	binary.LittleEndian.PutUint32(p[12:], v.SampleRate)
	binary.LittleEndian.PutUint32(p[20:], 128000)
	p[28] = v.Bs1Exp<<4 | v.Bs0Exp
	p[29] = 1
	return p
}

// CommentPacket returns a comment header with the given KEY=value comments.
func (v VorbisStream) CommentPacket(vendor string, comments ...string) []byte {
	p := append([]byte{3}, "vorbis"...)
	p = CommentBlock(p, vendor, comments...)
	return append(p, 1)
}

// CommentBlock appends a Vorbis comment block without framing bit to dst.
func CommentBlock(dst []byte, vendor string, comments ...string) []byte {
	le := binary.LittleEndian

	dst = le.AppendUint32(dst, uint32(len(vendor)))
	dst = append(dst, vendor...)
	dst = le.AppendUint32(dst, uint32(len(comments)))
	for _, c := range comments {
		dst = le.AppendUint32(dst, uint32(len(c)))
		dst = append(dst, c...)
	}
	return dst
}

// SetupPacket returns the setup header.
func (v VorbisStream) SetupPacket() []byte {
	var w BitWriter

	// Codebooks: a plain scalar book and a book with the vectors -1 and +1.
	w.WriteBits(1, 8)
	writeCodebook(&w, false)
	writeCodebook(&w, true)

	// One time domain transform placeholder.
	w.WriteBits(0, 6)
	w.WriteBits(0, 16)

	// Floor1, multiplier 1, with one partition of class 0. The class has
	// one dimension and no subclass book, so its point always predicts.
	w.WriteBits(0, 6)
	w.WriteBits(1, 16)
	w.WriteBits(1, 5)
	w.WriteBits(0, 4)
	w.WriteBits(0, 3)
	w.WriteBits(0, 2)
	w.WriteBits(0, 8)
	w.WriteBits(0, 2)
	w.WriteBits(vorbisRangeBits, 4)
	w.WriteBits(vorbisFloorMidX, vorbisRangeBits)

	// Residue type 2, a single class using book 1 in pass 0.
	w.WriteBits(0, 6)
	w.WriteBits(2, 16)
	w.WriteBits(0, 24)
	w.WriteBits(VorbisResidueEnd, 24)
	w.WriteBits(VorbisPartSize-1, 24)
	w.WriteBits(0, 6)
	w.WriteBits(0, 8)
	w.WriteBits(1, 3)
	w.WriteBool(false)
	w.WriteBits(1, 8)

	// Mapping 0 with one submap.
	w.WriteBits(0, 6)
	w.WriteBits(0, 16)
	w.WriteBool(false)
	w.WriteBool(v.Coupled)
	if v.Coupled {
		width := uint(bits.Len32(uint32(v.Channels - 1)))
		w.WriteBits(0, 8)
		w.WriteBits(1, width)
		w.WriteBits(0, width)
	}
	w.WriteBits(0, 2)
	w.WriteBits(0, 8)
	w.WriteBits(0, 8)
	w.WriteBits(0, 8)

	// Mode 0 is short, mode 1 long.
	w.WriteBits(1, 6)
	for _, long := range []bool{false, true} {
		w.WriteBool(long)
		w.WriteBits(0, 16)
		w.WriteBits(0, 16)
		w.WriteBits(0, 8)
	}

	w.WriteBool(true)

	return append(append([]byte{5}, "vorbis"...), w.Bytes()...)
}

func writeCodebook(w *BitWriter, vq bool) {
	w.WriteBits(0x564342, 24)
	w.WriteBits(1, 16)
	w.WriteBits(2, 24)
	w.WriteBool(false)
	w.WriteBool(false)
	w.WriteBits(0, 5)
	w.WriteBits(0, 5)

	if !vq {
		w.WriteBits(0, 4)
		return
	}

	w.WriteBits(1, 4)
	w.WriteBits(Float32Pack(-1), 32)
	w.WriteBits(Float32Pack(2), 32)
	w.WriteBits(0, 4)
	w.WriteBool(false)
	w.WriteBits(0, 1)
	w.WriteBits(1, 1)
}

// Float32Pack encodes f in the Vorbis codebook float format.
func Float32Pack(f float64) uint32 {
	var sign uint32
	if f < 0 {
		sign = 1 << 31
		f = -f
	}

	frac, exp := math.Frexp(f)
	mantissa := uint32(frac * (1 << 21))
	exp -= 21

	return sign | uint32(exp+788)<<21 | mantissa
}

// AudioPacket returns an audio packet for a short or long block. A silent
// packet marks every channel unused; otherwise every channel has a flat
// floor at y and the residue vectors are all +1.
func (v VorbisStream) AudioPacket(long bool, y uint8, silent bool) []byte {
	var w BitWriter

	w.WriteBool(false)
	w.WriteBool(long)

	n := 1 << v.Bs0Exp
	if long {
		n = 1 << v.Bs1Exp
		w.WriteBits(0, 2)
	}

	for range v.Channels {
		w.WriteBool(!silent)
		if !silent {
			w.WriteBits(uint32(y), 8)
			w.WriteBits(uint32(y), 8)
		}
	}

	if !silent {
		end := min(VorbisResidueEnd, n/2*v.Channels)
		for range end / VorbisPartSize {
			w.WriteBits(0, 1)
			for range VorbisPartSize {
				w.WriteBits(1, 1)
			}
		}
	}

	return w.Bytes()
}

// BlockFrames returns the frames produced by a block following another.
func (v VorbisStream) BlockFrames(prevLong, long bool) int {
	size := func(l bool) int {
		if l {
			return 1 << v.Bs1Exp
		}
		return 1 << v.Bs0Exp
	}
	return (size(prevLong) + size(long)) / 4
}

// OggFile lays the stream out as a single physical stream: each header
// packet on its own page and then the audio packets, perPage to a page, with
// granule positions from BlockFrames. longs selects the block size of each
// audio packet.
func (v VorbisStream) OggFile(serial uint32, longs []bool, perPage int) []byte {
	w := NewOggWriter(serial)

	w.WritePage(0, PageFirst, v.IdentPacket())
	w.WritePage(0, 0, v.CommentPacket("audiotest", "TITLE=Synthetic", "ARTIST=audmux"))
	w.WritePage(0, 0, v.SetupPacket())

	var gp uint64
	var page [][]byte

	for i, long := range longs {
		if i > 0 {
			gp += uint64(v.BlockFrames(longs[i-1], long))
		}
		page = append(page, v.AudioPacket(long, 180, false))

		if len(page) == perPage || i == len(longs)-1 {
			var flags byte
			if i == len(longs)-1 {
				flags = PageLast
			}
			w.WritePage(gp, flags, page...)
			page = page[:0]
		}
	}

	return w.Bytes()
}
