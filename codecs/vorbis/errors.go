// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/ik5/audmux/media"
)

var (
	ErrInvalidHeader   = fmt.Errorf("vorbis: invalid header: %w", media.ErrDecode)
	ErrInvalidSetup    = fmt.Errorf("vorbis: invalid setup: %w", media.ErrDecode)
	ErrInvalidCodebook = fmt.Errorf("vorbis: invalid codebook: %w", media.ErrDecode)
	ErrInvalidPacket   = fmt.Errorf("vorbis: invalid audio packet: %w", media.ErrDecode)

	// ErrBadReference is returned when the setup refers to a codebook,
	// floor, residue or mapping that was never defined.
	ErrBadReference = fmt.Errorf("vorbis: setup reference out of range: %w", media.ErrUnsupported)

	ErrFloor0Unsupported = fmt.Errorf("vorbis: floor type 0: %w", media.ErrUnsupported)
	ErrTooManyChannels   = fmt.Errorf("vorbis: more than 8 channels: %w", media.ErrUnsupported)
)

func wrapErr(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
