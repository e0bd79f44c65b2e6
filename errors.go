// SPDX-License-Identifier: EPL-2.0

package audmux

import (
	"fmt"

	"github.com/ik5/audmux/media"
)

var ErrUnknownFormat = fmt.Errorf("audmux: unknown format: %w", media.ErrUnsupported)
