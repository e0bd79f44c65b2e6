// SPDX-License-Identifier: EPL-2.0

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestInit changes global state and does not run in parallel.
func TestInit(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Init("warn", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("serial", "2a").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output %q contains an info message", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "serial=2a") {
		t.Errorf("output %q is missing the warning", out)
	}
}
