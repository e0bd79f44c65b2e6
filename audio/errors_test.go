// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidDstSize, "dst size must be multiple of channels"},
		{ErrCapacity, "audio buffer capacity exceeded"},
		{ErrBitDepth, "unsupported bit depth"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}

			wrapped := fmt.Errorf("context: %w", tt.err)
			if !errors.Is(wrapped, tt.err) {
				t.Error("errors.Is() failed for wrapped error")
			}
		})
	}

	if errors.Is(ErrCapacity, ErrInvalidDstSize) {
		t.Error("errors.Is() matched unrelated errors")
	}
}
