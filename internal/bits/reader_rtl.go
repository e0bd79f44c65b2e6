// SPDX-License-Identifier: EPL-2.0

package bits

import (
	"encoding/binary"

	"github.com/ik5/audmux/internal/codebook"
)

// ReaderRtl reads bits least-significant bit first.
//
// Unread bits are kept right-justified in a 64-bit register that is
// refilled, up to 8 bytes at a time, from the remaining buffer.
type ReaderRtl struct {
	buf       []byte
	bits      uint64
	nBitsLeft uint32
}

// NewReaderRtl creates a ReaderRtl over buf.
func NewReaderRtl(buf []byte) *ReaderRtl {
	return &ReaderRtl{buf: buf}
}

func (r *ReaderRtl) fetchBits() error {
	var tmp [8]byte

	n := copy(tmp[:], r.buf)
	if n == 0 {
		return ErrEndOfStream
	}
	r.buf = r.buf[n:]

	r.bits = binary.LittleEndian.Uint64(tmp[:])
	r.nBitsLeft = uint32(n) << 3

	return nil
}

// fetchBitsPartial tops up the register without discarding buffered bits.
func (r *ReaderRtl) fetchBitsPartial() {
	var tmp [8]byte

	n := min(len(r.buf), int(64-r.nBitsLeft)>>3)
	copy(tmp[:n], r.buf[:n])
	r.buf = r.buf[n:]

	if n > 0 {
		r.bits |= binary.LittleEndian.Uint64(tmp[:]) << r.nBitsLeft
		r.nBitsLeft += uint32(n) << 3
	}
}

func (r *ReaderRtl) consumeBits(n uint32) {
	r.nBitsLeft -= n
	r.bits >>= n
}

// ReadBool reads a single bit.
func (r *ReaderRtl) ReadBool() (bool, error) {
	if r.nBitsLeft < 1 {
		if err := r.fetchBits(); err != nil {
			return false, err
		}
	}

	bit := r.bits&1 == 1
	r.consumeBits(1)

	return bit, nil
}

// ReadBit reads a single bit as 0 or 1.
func (r *ReaderRtl) ReadBit() (uint32, error) {
	b, err := r.ReadBool()
	if b {
		return 1, err
	}
	return 0, err
}

// ReadBitsLeq32 reads n bits, n <= 32. Reading 0 bits returns 0. On error
// nothing is consumed.
func (r *ReaderRtl) ReadBitsLeq32(n uint32) (uint32, error) {
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
func (r *ReaderRtl) ReadBitsLeq64(n uint32) (uint64, error) {
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

func (r *ReaderRtl) readBitsLeq64(n uint32) (uint64, error) {
	if n <= 32 {
		return r.readBits(n)
	}

	lo, err := r.readBits(32)
	if err != nil {
		return 0, err
	}
	hi, err := r.readBits(n - 32)
	if err != nil {
		return 0, err
	}

	return hi<<32 | lo, nil
}

func (r *ReaderRtl) readBits(width uint32) (uint64, error) {
	if width == 0 {
		return 0, nil
	}

	bits := r.bits
	needed := width

	for needed > r.nBitsLeft {
		needed -= r.nBitsLeft

		if err := r.fetchBits(); err != nil {
			return 0, err
		}

		bits |= r.bits << (width - needed)
	}

	r.consumeBits(needed)

	return bits & (^uint64(0) >> (64 - width)), nil
}

// IgnoreBits skips n bits.
func (r *ReaderRtl) IgnoreBits(n uint32) error {
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
func (r *ReaderRtl) IgnoreBit() error {
	return r.IgnoreBits(1)
}

// BitsLeft returns the number of unread bits.
func (r *ReaderRtl) BitsLeft() uint64 {
	return uint64(len(r.buf))<<3 + uint64(r.nBitsLeft)
}

// RealignToByte discards bits up to the next byte boundary.
func (r *ReaderRtl) RealignToByte() {
	r.consumeBits(r.nBitsLeft & 0x7)
}

// ReadCodebook decodes one value from cb and returns it with the number of
// bits the code occupied.
func (r *ReaderRtl) ReadCodebook(cb *codebook.Codebook) (uint32, uint32, error) {
	if cb.IsEmpty() {
		return 0, 0, ErrEndOfStream
	}

	if r.nBitsLeft < cb.MaxCodeLen {
		r.fetchBitsPartial()
	}

	numBitsLeft := r.nBitsLeft
	bits := r.bits

	blockLen := cb.InitBlockLen
	entry := cb.Table[bits&mask(blockLen)+1]

	var consumed uint32

	for entry.IsJump() {
		consumed += blockLen
		bits >>= blockLen

		if consumed > numBitsLeft {
			return 0, 0, ErrEndOfStream
		}

		blockLen = entry.JumpLen()
		entry = cb.Table[uint64(entry.JumpOffset())+bits&mask(blockLen)]
	}

	consumed += entry.ValueLen()

	if consumed > numBitsLeft {
		return 0, 0, ErrEndOfStream
	}

	r.consumeBits(consumed)

	return entry.Value(), consumed, nil
}

func mask(width uint32) uint64 {
	return ^(^uint64(0) << width)
}
