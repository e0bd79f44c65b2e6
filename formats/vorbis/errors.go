// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/ik5/audmux/media"
)

// ErrNoVorbis is returned for Ogg files without a Vorbis stream.
var ErrNoVorbis = fmt.Errorf("vorbis: no vorbis stream: %w", media.ErrUnsupported)
