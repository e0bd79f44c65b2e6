// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrCapacity       = errors.New("audio buffer capacity exceeded")
	ErrBitDepth       = errors.New("unsupported bit depth")
)
