// SPDX-License-Identifier: EPL-2.0

package media

import (
	"errors"
	"fmt"
	"io"
)

// Error kinds surfaced by readers and decoders. Narrower errors in the codec
// and format packages wrap one of these, so callers can match with errors.Is.
var (
	ErrDecode      = errors.New("malformed stream")
	ErrUnsupported = errors.New("unsupported feature")
	ErrLimit       = errors.New("limit reached")
	ErrSeek        = errors.New("seek failed")
	ErrReset       = errors.New("decoder reset required")

	// ErrEndOfStream marks the end of packets. It is io.EOF so that plain
	// read loops keep working.
	ErrEndOfStream = io.EOF
)

var (
	ErrSeekOutOfRange  = fmt.Errorf("out of range: %w", ErrSeek)
	ErrSeekUnseekable  = fmt.Errorf("source is not seekable: %w", ErrSeek)
	ErrSeekForwardOnly = fmt.Errorf("only forward seeks are supported: %w", ErrSeek)
)

// Errorf formats a message and wraps kind.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

// DecodeError returns a malformed stream error with msg.
func DecodeError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrDecode)
}

// UnsupportedError returns an unsupported feature error with msg.
func UnsupportedError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrUnsupported)
}

// LimitError returns a resource limit error with msg.
func LimitError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrLimit)
}
