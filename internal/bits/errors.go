// SPDX-License-Identifier: EPL-2.0

package bits

import (
	"errors"
	"fmt"
	"io"
)

// ErrEndOfStream is returned when more bits are requested than the buffer
// holds. It wraps io.ErrUnexpectedEOF.
var ErrEndOfStream = fmt.Errorf("bits: end of stream: %w", io.ErrUnexpectedEOF)

// IsEndOfStream reports whether err was caused by running out of bits.
func IsEndOfStream(err error) bool {
	return errors.Is(err, ErrEndOfStream)
}
