// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"

	"github.com/ik5/audmux/media"
)

var (
	// ErrNoFrames is returned when a source holds no run of two similar
	// frame headers.
	ErrNoFrames = fmt.Errorf("mp3: no mpeg audio frames: %w", media.ErrDecode)
	// ErrNotMP3 wraps errors from the PCM decoder.
	ErrNotMP3 = fmt.Errorf("mp3: cannot decode stream: %w", media.ErrDecode)
)
