// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrNotSeekable   = errors.New("stream: source is not seekable")
	ErrInvalidBufLen = errors.New("stream: buffer length must be a power of two and at least 32 KiB")
	ErrScopeExceeded = errors.New("stream: read exceeds scoped length")
	ErrNegativeSeek  = errors.New("stream: seek to negative position")
)
