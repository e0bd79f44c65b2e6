// SPDX-License-Identifier: EPL-2.0

package stream

import "io"

// BufReader reads from an in-memory byte slice. It does not copy buf.
type BufReader struct {
	buf []byte
	pos int
}

func NewBufReader(buf []byte) *BufReader {
	return &BufReader{buf: buf}
}

func (b *BufReader) take(n int) ([]byte, error) {
	if avail := len(b.buf) - b.pos; avail < n {
		return nil, shortRead(avail)
	}

	s := b.buf[b.pos : b.pos+n]
	b.pos += n

	return s, nil
}

func (b *BufReader) ReadByte() (byte, error) {
	s, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

func (b *BufReader) ReadExact(buf []byte) error {
	s, err := b.take(len(buf))
	if err != nil {
		return err
	}
	copy(buf, s)
	return nil
}

func (b *BufReader) ReadDoubleBytes() ([2]byte, error) {
	var out [2]byte
	s, err := b.take(2)
	if err == nil {
		copy(out[:], s)
	}
	return out, err
}

func (b *BufReader) ReadTripleBytes() ([3]byte, error) {
	var out [3]byte
	s, err := b.take(3)
	if err == nil {
		copy(out[:], s)
	}
	return out, err
}

func (b *BufReader) ReadQuadBytes() ([4]byte, error) {
	var out [4]byte
	s, err := b.take(4)
	if err == nil {
		copy(out[:], s)
	}
	return out, err
}

// ReadBufBytesRef returns the next n bytes without copying.
func (b *BufReader) ReadBufBytesRef(n int) ([]byte, error) {
	return b.take(n)
}

// ReadBufBytesAvailable returns, without copying, everything not yet read.
func (b *BufReader) ReadBufBytesAvailable() []byte {
	s := b.buf[b.pos:]
	b.pos = len(b.buf)
	return s
}

// BytesAvailable returns the number of unread bytes.
func (b *BufReader) BytesAvailable() uint64 {
	return uint64(len(b.buf) - b.pos)
}

func (b *BufReader) IgnoreBytes(n uint64) error {
	if n > b.BytesAvailable() {
		b.pos = len(b.buf)
		return io.ErrUnexpectedEOF
	}
	b.pos += int(n)
	return nil
}

func (b *BufReader) Pos() uint64 {
	return uint64(b.pos)
}
