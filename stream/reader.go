// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"encoding/binary"
	"io"
)

// ByteReader is implemented by every reader in this package.
type ByteReader interface {
	ReadByte() (byte, error)
	// ReadExact fills buf completely or returns an error.
	ReadExact(buf []byte) error
	ReadDoubleBytes() ([2]byte, error)
	ReadTripleBytes() ([3]byte, error)
	ReadQuadBytes() ([4]byte, error)
	// IgnoreBytes skips n bytes.
	IgnoreBytes(n uint64) error
	// Pos returns the current read position.
	Pos() uint64
}

// SeekBuffered is implemented by readers that can revisit buffered data
// without touching the underlying source.
type SeekBuffered interface {
	// SeekBuffered moves to pos, clamped to the buffered range, and returns
	// the position actually reached.
	SeekBuffered(pos uint64) uint64
	// EnsureSeekBuffered makes room to seek back at least n bytes.
	EnsureSeekBuffered(n int)
}

func ReadU16BE(r ByteReader) (uint16, error) {
	b, err := r.ReadDoubleBytes()
	return binary.BigEndian.Uint16(b[:]), err
}

func ReadU24BE(r ByteReader) (uint32, error) {
	b, err := r.ReadTripleBytes()
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), err
}

func ReadU32BE(r ByteReader) (uint32, error) {
	b, err := r.ReadQuadBytes()
	return binary.BigEndian.Uint32(b[:]), err
}

func ReadU16LE(r ByteReader) (uint16, error) {
	b, err := r.ReadDoubleBytes()
	return binary.LittleEndian.Uint16(b[:]), err
}

func ReadU32LE(r ByteReader) (uint32, error) {
	b, err := r.ReadQuadBytes()
	return binary.LittleEndian.Uint32(b[:]), err
}

func ReadU64LE(r ByteReader) (uint64, error) {
	var b [8]byte
	err := r.ReadExact(b[:])
	return binary.LittleEndian.Uint64(b[:]), err
}

// ReadBoxedSlice reads exactly n bytes into a new slice.
func ReadBoxedSlice(r ByteReader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.ReadExact(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// shortRead maps the number of bytes obtained for a fixed-size read to the
// io.ReadFull error convention.
func shortRead(got int) error {
	if got == 0 {
		return io.EOF
	}
	return io.ErrUnexpectedEOF
}
