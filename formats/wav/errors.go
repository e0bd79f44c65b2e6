// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNoChannels   = errors.New("wav: source has no channels")
	ErrPartialFrame = errors.New("wav: sample count is not a multiple of the channel count")
	ErrTooLarge     = errors.New("wav: data exceeds 4 GiB")
)
