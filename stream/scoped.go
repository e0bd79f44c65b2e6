// SPDX-License-Identifier: EPL-2.0

package stream

// ScopedReader limits the number of bytes that may be read from an inner
// ByteReader. A read that would cross the limit fails with ErrScopeExceeded
// and consumes nothing.
type ScopedReader struct {
	inner ByteReader
	start uint64
	len   uint64
	read  uint64
}

// NewScopedReader allows n bytes to be read from inner, starting at its
// current position.
func NewScopedReader(inner ByteReader, n uint64) *ScopedReader {
	return &ScopedReader{inner: inner, start: inner.Pos(), len: n}
}

// Inner returns the wrapped reader.
func (s *ScopedReader) Inner() ByteReader { return s.inner }

// BytesAvailable returns the bytes left in scope.
func (s *ScopedReader) BytesAvailable() uint64 { return s.len - s.read }

func (s *ScopedReader) reserve(n uint64) error {
	if s.len-s.read < n {
		return ErrScopeExceeded
	}
	s.read += n
	return nil
}

func (s *ScopedReader) ReadByte() (byte, error) {
	if err := s.reserve(1); err != nil {
		return 0, err
	}
	return s.inner.ReadByte()
}

func (s *ScopedReader) ReadExact(buf []byte) error {
	if err := s.reserve(uint64(len(buf))); err != nil {
		return err
	}
	return s.inner.ReadExact(buf)
}

func (s *ScopedReader) ReadDoubleBytes() ([2]byte, error) {
	if err := s.reserve(2); err != nil {
		return [2]byte{}, err
	}
	return s.inner.ReadDoubleBytes()
}

func (s *ScopedReader) ReadTripleBytes() ([3]byte, error) {
	if err := s.reserve(3); err != nil {
		return [3]byte{}, err
	}
	return s.inner.ReadTripleBytes()
}

func (s *ScopedReader) ReadQuadBytes() ([4]byte, error) {
	if err := s.reserve(4); err != nil {
		return [4]byte{}, err
	}
	return s.inner.ReadQuadBytes()
}

func (s *ScopedReader) IgnoreBytes(n uint64) error {
	if err := s.reserve(n); err != nil {
		return err
	}
	return s.inner.IgnoreBytes(n)
}

func (s *ScopedReader) Pos() uint64 { return s.inner.Pos() }

// SeekBuffered seeks the inner reader, clamped to the scope, if the inner
// reader supports buffered seeking. Otherwise the position is unchanged.
func (s *ScopedReader) SeekBuffered(pos uint64) uint64 {
	sb, ok := s.inner.(SeekBuffered)
	if !ok {
		return s.inner.Pos()
	}

	pos = min(max(pos, s.start), s.start+s.len)
	actual := sb.SeekBuffered(pos)
	s.read = actual - s.start

	return actual
}

// EnsureSeekBuffered forwards to the inner reader when it can seek back.
func (s *ScopedReader) EnsureSeekBuffered(n int) {
	if sb, ok := s.inner.(SeekBuffered); ok {
		sb.EnsureSeekBuffered(n)
	}
}
