// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"io"
	"math/bits"
)

const (
	minBlockLen = 1 << 10
	maxBlockLen = 32 << 10

	// DefaultBufferLen is the ring length used when the options leave it unset.
	DefaultBufferLen = 64 << 10
)

// MediaSourceStreamOptions configures the ring buffer.
type MediaSourceStreamOptions struct {
	// BufferLen is the ring buffer length. It must be a power of two and at
	// least 32 KiB. Zero selects DefaultBufferLen.
	BufferLen int
}

// MediaSourceStream buffers a MediaSource.
//
// The read-ahead length starts at 1 KiB and doubles on every refill up to
// 32 KiB. Bytes already consumed stay in the ring until they are
// overwritten, so a reader may step back by up to the ring length minus
// 32 KiB, or by the number of bytes read since the last Seek, whichever is
// smaller.
type MediaSourceStream struct {
	inner MediaSource

	ring     []byte
	ringMask int

	readPos  int
	writePos int

	readBlockLen int

	// absPos is the position of the inner source.
	absPos uint64
	// relPos counts bytes read from the inner source since the last Seek.
	relPos uint64

	err error
}

// NewMediaSourceStream wraps src.
func NewMediaSourceStream(src MediaSource, opts MediaSourceStreamOptions) (*MediaSourceStream, error) {
	n := opts.BufferLen
	if n == 0 {
		n = DefaultBufferLen
	}
	if bits.OnesCount(uint(n)) != 1 || n < maxBlockLen {
		return nil, ErrInvalidBufLen
	}

	return &MediaSourceStream{
		inner:        src,
		ring:         make([]byte, n),
		ringMask:     n - 1,
		readBlockLen: minBlockLen,
	}, nil
}

// Inner returns the wrapped source.
func (m *MediaSourceStream) Inner() MediaSource { return m.inner }

// IsSeekable reports whether the inner source can seek.
func (m *MediaSourceStream) IsSeekable() bool { return m.inner.IsSeekable() }

// ByteLen returns the inner source length, if known.
func (m *MediaSourceStream) ByteLen() (int64, bool) { return m.inner.ByteLen() }

// Close closes the inner source.
func (m *MediaSourceStream) Close() error { return m.inner.Close() }

func (m *MediaSourceStream) isBufferExhausted() bool {
	return m.readPos == m.writePos
}

func (m *MediaSourceStream) unreadBufferLen() int {
	if m.writePos >= m.readPos {
		return m.writePos - m.readPos
	}
	return m.writePos + len(m.ring) - m.readPos
}

// readBufferLen is the number of already consumed bytes still held in the
// ring.
func (m *MediaSourceStream) readBufferLen() int {
	unread := m.unreadBufferLen()
	// One slot always separates the write position from the oldest byte.
	held := len(m.ring) - 1
	if m.relPos < uint64(held) {
		held = int(m.relPos)
	}
	return held - unread
}

func (m *MediaSourceStream) contiguousBuf() []byte {
	if m.writePos >= m.readPos {
		return m.ring[m.readPos:m.writePos]
	}
	return m.ring[m.readPos:]
}

func (m *MediaSourceStream) consume(n int) {
	m.readPos = (m.readPos + n) & m.ringMask
}

// fetch refills the ring when every buffered byte has been consumed.
func (m *MediaSourceStream) fetch() error {
	if !m.isBufferExhausted() {
		return nil
	}
	if m.err != nil {
		return m.err
	}

	// Never fill the whole ring: a full ring is indistinguishable from an
	// empty one.
	want := min(m.readBlockLen, len(m.ring)-1)

	var got int

	vec0 := m.ring[m.writePos:]
	if len(vec0) >= want {
		got, m.err = io.ReadAtLeast(m.inner, vec0[:want], 1)
	} else {
		got, m.err = io.ReadAtLeast(m.inner, vec0, 1)
		if m.err == nil && got == len(vec0) {
			var more int
			more, m.err = io.ReadAtLeast(m.inner, m.ring[:want-len(vec0)], 1)
			got += more
		}
	}

	if got > 0 && errors.Is(m.err, io.EOF) {
		// Report end of stream on the next refill instead.
		m.err = nil
	}

	m.writePos = (m.writePos + got) & m.ringMask
	m.absPos += uint64(got)
	m.relPos += uint64(got)

	m.readBlockLen = min(m.readBlockLen<<1, maxBlockLen)

	if got == 0 {
		return m.err
	}
	return nil
}

// ReadByte reads a single byte.
func (m *MediaSourceStream) ReadByte() (byte, error) {
	if m.isBufferExhausted() {
		if err := m.fetch(); err != nil {
			return 0, err
		}
	}

	b := m.ring[m.readPos]
	m.consume(1)

	return b, nil
}

// Read implements io.Reader. It returns as many bytes as the buffer and the
// source can supply without blocking on more than one refill per chunk.
func (m *MediaSourceStream) Read(p []byte) (int, error) {
	total := 0

	for len(p) > 0 {
		if err := m.fetch(); err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}

		n := copy(p, m.contiguousBuf())
		if n == 0 {
			break
		}

		p = p[n:]
		total += n
		m.consume(n)
	}

	return total, nil
}

// ReadExact fills buf completely.
func (m *MediaSourceStream) ReadExact(buf []byte) error {
	_, err := io.ReadFull(m, buf)
	return err
}

func (m *MediaSourceStream) readFixed(buf []byte) error {
	// Fast path when the bytes are contiguous in the ring.
	if cb := m.contiguousBuf(); len(cb) >= len(buf) {
		copy(buf, cb)
		m.consume(len(buf))
		return nil
	}

	for i := range buf {
		b, err := m.ReadByte()
		if err != nil {
			return shortRead(i)
		}
		buf[i] = b
	}

	return nil
}

func (m *MediaSourceStream) ReadDoubleBytes() ([2]byte, error) {
	var b [2]byte
	err := m.readFixed(b[:])
	return b, err
}

func (m *MediaSourceStream) ReadTripleBytes() ([3]byte, error) {
	var b [3]byte
	err := m.readFixed(b[:])
	return b, err
}

func (m *MediaSourceStream) ReadQuadBytes() ([4]byte, error) {
	var b [4]byte
	err := m.readFixed(b[:])
	return b, err
}

// IgnoreBytes skips n bytes by reading through them.
func (m *MediaSourceStream) IgnoreBytes(n uint64) error {
	for n > 0 {
		if err := m.fetch(); err != nil {
			return err
		}

		step := min(uint64(len(m.contiguousBuf())), n)
		m.consume(int(step))
		n -= step
	}

	return nil
}

// Pos returns the read position in the inner source.
func (m *MediaSourceStream) Pos() uint64 {
	return m.absPos - uint64(m.unreadBufferLen())
}

// SeekBuffered moves to pos within the buffered data. The move is clamped to
// what the ring holds; the returned position is the one reached.
func (m *MediaSourceStream) SeekBuffered(pos uint64) uint64 {
	old := m.Pos()

	switch {
	case pos > old:
		return m.seekBufferedRel(int(min(pos-old, uint64(len(m.ring)))))
	case pos < old:
		return m.seekBufferedRel(-int(min(old-pos, uint64(len(m.ring)))))
	default:
		return old
	}
}

// SeekBufferedRev moves back by delta bytes within the buffered data.
func (m *MediaSourceStream) SeekBufferedRev(delta int) uint64 {
	return m.seekBufferedRel(-delta)
}

func (m *MediaSourceStream) seekBufferedRel(delta int) uint64 {
	if delta < 0 {
		back := min(-delta, m.readBufferLen())
		m.readPos = (m.readPos + len(m.ring) - back) & m.ringMask
	} else if delta > 0 {
		fwd := min(delta, m.unreadBufferLen())
		m.readPos = (m.readPos + fwd) & m.ringMask
	}

	return m.Pos()
}

// EnsureSeekBuffered grows the ring so at least n consumed bytes can be
// revisited. Buffered data, read and unread, is preserved.
func (m *MediaSourceStream) EnsureSeekBuffered(n int) {
	newLen := nextPowerOfTwo(maxBlockLen + n)
	if newLen <= len(m.ring) {
		return
	}

	history := m.readBufferLen()
	held := history + m.unreadBufferLen()
	start := (m.readPos + len(m.ring) - history) & m.ringMask

	ring := make([]byte, newLen)

	c := copy(ring, m.ring[start:min(start+held, len(m.ring))])
	if c < held {
		copy(ring[c:], m.ring[:held-c])
	}

	m.ring = ring
	m.ringMask = newLen - 1
	m.readPos = history
	m.writePos = held
}

// Seek implements io.Seeker on the inner source and drops the buffer.
// Seeking relative to the current position accounts for read-ahead.
func (m *MediaSourceStream) Seek(offset int64, whence int) (int64, error) {
	if !m.inner.IsSeekable() {
		return 0, ErrNotSeekable
	}

	if whence == io.SeekCurrent {
		offset -= int64(m.unreadBufferLen())
	}

	pos, err := m.inner.Seek(offset, whence)
	if err != nil {
		return 0, err
	}

	m.reset(uint64(pos))

	return pos, nil
}

func (m *MediaSourceStream) reset(pos uint64) {
	m.readPos = 0
	m.writePos = 0
	m.readBlockLen = minBlockLen
	m.absPos = pos
	m.relPos = 0
	m.err = nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
