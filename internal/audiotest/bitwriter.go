// SPDX-License-Identifier: EPL-2.0

package audiotest

// BitWriter packs values least-significant bit first, the order Vorbis
// uses.
type BitWriter struct {
	buf   []byte
	acc   uint64
	nBits uint
}

// WriteBits appends the low n bits of v.
func (w *BitWriter) WriteBits(v uint32, n uint) {
	if n > 32 {
		panic("audiotest: more than 32 bits")
	}

	w.acc |= (uint64(v) & (1<<n - 1)) << w.nBits
	w.nBits += n

	for w.nBits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nBits -= 8
	}
}

func (w *BitWriter) WriteBool(b bool) {
	if b {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
}

// Len returns the number of bits written.
func (w *BitWriter) Len() int {
	return len(w.buf)*8 + int(w.nBits)
}

// Bytes returns the packed bits, padding the last byte with zeros.
func (w *BitWriter) Bytes() []byte {
	out := append([]byte(nil), w.buf...)
	if w.nBits > 0 {
		out = append(out, byte(w.acc))
	}
	return out
}

// MSBWriter packs values most-significant bit first, the order MPEG audio
// uses.
type MSBWriter struct {
	buf   []byte
	nBits uint
}

// WriteBits appends the low n bits of v.
func (w *MSBWriter) WriteBits(v uint32, n uint) {
	if n > 32 {
		panic("audiotest: more than 32 bits")
	}

	for i := int(n) - 1; i >= 0; i-- {
		if w.nBits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		w.buf[len(w.buf)-1] |= byte(v>>uint(i)&1) << (7 - w.nBits%8)
		w.nBits++
	}
}

func (w *MSBWriter) WriteBool(b bool) {
	if b {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
}

// Len returns the number of bits written.
func (w *MSBWriter) Len() int {
	return int(w.nBits)
}

// Bytes returns the packed bits, padding the last byte with zeros.
func (w *MSBWriter) Bytes() []byte {
	return append([]byte(nil), w.buf...)
}
