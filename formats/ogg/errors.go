// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"fmt"

	"github.com/ik5/audmux/media"
)

var (
	ErrMissingMarker  = fmt.Errorf("ogg: missing page capture pattern: %w", media.ErrDecode)
	ErrInvalidVersion = fmt.Errorf("ogg: invalid page version: %w", media.ErrDecode)
	ErrInvalidFlags   = fmt.Errorf("ogg: invalid page flags: %w", media.ErrDecode)
	ErrCRCMismatch    = fmt.Errorf("ogg: page checksum mismatch: %w", media.ErrDecode)

	// ErrPageNotFirst is returned when a stream does not start with a page
	// marked as the first page of a logical stream.
	ErrPageNotFirst = fmt.Errorf("ogg: stream does not start with a first page: %w", media.ErrDecode)
	ErrNoPackets    = fmt.Errorf("ogg: no logical stream carries packets: %w", media.ErrDecode)

	ErrPacketTooLarge = fmt.Errorf("ogg: partial packet exceeds %d bytes: %w", maxPartialPacketLen, media.ErrLimit)
)
