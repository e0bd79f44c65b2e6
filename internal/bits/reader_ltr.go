// SPDX-License-Identifier: EPL-2.0

package bits

import (
	"encoding/binary"

	"github.com/ik5/audmux/internal/codebook"
)

// ReaderLtr reads bits most-significant bit first.
//
// Unread bits are kept left-justified in a 64-bit register, so the next bit
// to be read is always bit 63.
type ReaderLtr struct {
	buf       []byte
	bits      uint64
	nBitsLeft uint32
}

// NewReaderLtr creates a ReaderLtr over buf.
func NewReaderLtr(buf []byte) *ReaderLtr {
	return &ReaderLtr{buf: buf}
}

func (r *ReaderLtr) fetchBits() error {
	var tmp [8]byte

	n := copy(tmp[:], r.buf)
	if n == 0 {
		return ErrEndOfStream
	}
	r.buf = r.buf[n:]

	r.bits = binary.BigEndian.Uint64(tmp[:])
	r.nBitsLeft = uint32(n) << 3

	return nil
}

func (r *ReaderLtr) fetchBitsPartial() {
	var tmp [8]byte

	n := min(len(r.buf), int(64-r.nBitsLeft)>>3)
	copy(tmp[:n], r.buf[:n])
	r.buf = r.buf[n:]

	if n > 0 {
		r.bits |= binary.BigEndian.Uint64(tmp[:]) >> r.nBitsLeft
		r.nBitsLeft += uint32(n) << 3
	}
}

func (r *ReaderLtr) consumeBits(n uint32) {
	r.nBitsLeft -= n
	r.bits <<= n
}

// ReadBool reads a single bit.
func (r *ReaderLtr) ReadBool() (bool, error) {
	if r.nBitsLeft < 1 {
		if err := r.fetchBits(); err != nil {
			return false, err
		}
	}

	bit := r.bits&(1<<63) != 0
	r.consumeBits(1)

	return bit, nil
}

// ReadBit reads a single bit as 0 or 1.
func (r *ReaderLtr) ReadBit() (uint32, error) {
	b, err := r.ReadBool()
	if b {
		return 1, err
	}
	return 0, err
}

// ReadBitsLeq32 reads n bits, n <= 32. Reading 0 bits returns 0. On error
// nothing is consumed.
func (r *ReaderLtr) ReadBitsLeq32(n uint32) (uint32, error) {
	if n > 32 {
		panic("bits: ReadBitsLeq32 width > 32")
	}

	saved := *r
	v, err := r.readBits(n)
	if err != nil {
		*r = saved
		return 0, err
	}
	return uint32(v), nil
}

// ReadBitsLeq64 reads n bits, n <= 64. On error nothing is consumed.
func (r *ReaderLtr) ReadBitsLeq64(n uint32) (uint64, error) {
	if n > 64 {
		panic("bits: ReadBitsLeq64 width > 64")
	}

	saved := *r
	v, err := r.readBitsLeq64(n)
	if err != nil {
		*r = saved
		return 0, err
	}
	return v, nil
}

func (r *ReaderLtr) readBitsLeq64(n uint32) (uint64, error) {
	if n <= 32 {
		return r.readBits(n)
	}

	hi, err := r.readBits(n - 32)
	if err != nil {
		return 0, err
	}
	lo, err := r.readBits(32)
	if err != nil {
		return 0, err
	}

	return hi<<32 | lo, nil
}

func (r *ReaderLtr) readBits(width uint32) (uint64, error) {
	if width == 0 {
		return 0, nil
	}

	// Bits still in the register, right-aligned. Shifting by 64 yields 0.
	bits := r.bits >> (64 - width)
	needed := width

	for needed > r.nBitsLeft {
		needed -= r.nBitsLeft

		if err := r.fetchBits(); err != nil {
			return 0, err
		}

		bits |= r.bits >> (64 - needed)
	}

	r.consumeBits(needed)

	return bits, nil
}

// IgnoreBits skips n bits.
func (r *ReaderLtr) IgnoreBits(n uint32) error {
	if n <= r.nBitsLeft {
		r.consumeBits(n)
		return nil
	}

	for n > r.nBitsLeft {
		n -= r.nBitsLeft
		if err := r.fetchBits(); err != nil {
			return err
		}
	}

	r.consumeBits(n)

	return nil
}

// IgnoreBit skips a single bit.
func (r *ReaderLtr) IgnoreBit() error {
	return r.IgnoreBits(1)
}

// BitsLeft returns the number of unread bits.
func (r *ReaderLtr) BitsLeft() uint64 {
	return uint64(len(r.buf))<<3 + uint64(r.nBitsLeft)
}

// RealignToByte discards bits up to the next byte boundary.
func (r *ReaderLtr) RealignToByte() {
	r.consumeBits(r.nBitsLeft & 0x7)
}

// ReadCodebook decodes one value from a verbatim-ordered codebook and
// returns it with the number of bits the code occupied.
func (r *ReaderLtr) ReadCodebook(cb *codebook.Codebook) (uint32, uint32, error) {
	if cb.IsEmpty() {
		return 0, 0, ErrEndOfStream
	}

	if r.nBitsLeft < cb.MaxCodeLen {
		r.fetchBitsPartial()
	}

	numBitsLeft := r.nBitsLeft
	bits := r.bits

	blockLen := cb.InitBlockLen
	entry := cb.Table[top(bits, blockLen)+1]

	var consumed uint32

	for entry.IsJump() {
		consumed += blockLen
		bits <<= blockLen

		if consumed > numBitsLeft {
			return 0, 0, ErrEndOfStream
		}

		blockLen = entry.JumpLen()
		entry = cb.Table[uint64(entry.JumpOffset())+top(bits, blockLen)]
	}

	consumed += entry.ValueLen()

	if consumed > numBitsLeft {
		return 0, 0, ErrEndOfStream
	}

	r.consumeBits(consumed)

	return entry.Value(), consumed, nil
}

// top returns the width most significant bits of v.
func top(v uint64, width uint32) uint64 {
	if width == 0 {
		return 0
	}
	return v >> (64 - width)
}
