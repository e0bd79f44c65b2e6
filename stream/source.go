// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"io"
	"os"
)

// MediaSource is the byte source a MediaSourceStream reads from. Seeking is
// optional and reported by IsSeekable.
type MediaSource interface {
	io.Reader
	io.Seeker
	io.Closer

	// IsSeekable reports whether Seek may be used.
	IsSeekable() bool
	// ByteLen returns the total length of the source, if known.
	ByteLen() (int64, bool)
}

// NewReadOnlySource adapts a forward-only reader. Seek always fails.
func NewReadOnlySource(r io.Reader) MediaSource {
	return &readOnlySource{r: r}
}

type readOnlySource struct {
	r io.Reader
}

func (s *readOnlySource) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *readOnlySource) Seek(int64, int) (int64, error) { return 0, ErrNotSeekable }

func (s *readOnlySource) IsSeekable() bool { return false }

func (s *readOnlySource) ByteLen() (int64, bool) { return 0, false }

func (s *readOnlySource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewSource adapts r. If r is an io.ReadSeeker the source is seekable and
// its length is measured once up front.
func NewSource(r io.Reader) MediaSource {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return NewReadOnlySource(r)
	}

	s := &seekableSource{rs: rs, length: -1}

	if f, ok := r.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode().IsRegular() {
			s.length = fi.Size()
		}
		return s
	}

	if cur, err := rs.Seek(0, io.SeekCurrent); err == nil {
		if end, err := rs.Seek(0, io.SeekEnd); err == nil {
			s.length = end
		}
		if _, err := rs.Seek(cur, io.SeekStart); err != nil {
			// The source could not be restored, so treat it as a stream.
			return NewReadOnlySource(r)
		}
	}

	return s
}

type seekableSource struct {
	rs     io.ReadSeeker
	length int64
}

func (s *seekableSource) Read(p []byte) (int, error) { return s.rs.Read(p) }

func (s *seekableSource) Seek(offset int64, whence int) (int64, error) {
	return s.rs.Seek(offset, whence)
}

func (s *seekableSource) IsSeekable() bool { return true }

func (s *seekableSource) ByteLen() (int64, bool) { return s.length, s.length >= 0 }

func (s *seekableSource) Close() error {
	if c, ok := s.rs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
