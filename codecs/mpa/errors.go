// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"fmt"

	"github.com/ik5/audmux/media"
)

var (
	ErrInvalidHeader = fmt.Errorf("mpa: invalid frame header: %w", media.ErrDecode)
	ErrInvalidFrame  = fmt.Errorf("mpa: invalid frame: %w", media.ErrDecode)
	ErrCRCMismatch   = fmt.Errorf("mpa: frame crc mismatch: %w", media.ErrDecode)

	ErrFreeFormat = fmt.Errorf("mpa: free format bitrate: %w", media.ErrUnsupported)
	ErrLayer      = fmt.Errorf("mpa: layer 1 and 2 decoding: %w", media.ErrUnsupported)
	ErrMpeg2      = fmt.Errorf("mpa: mpeg-2 scale factors: %w", media.ErrUnsupported)
	// ErrHuffman is returned once a Layer 3 frame has been parsed up to its
	// spectral samples, which are not decoded.
	ErrHuffman = fmt.Errorf("mpa: huffman sample decoding: %w", media.ErrUnsupported)
)

func wrapErr(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
