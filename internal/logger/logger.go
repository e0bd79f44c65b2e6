// SPDX-License-Identifier: EPL-2.0

// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps debug, info, warn and error to zerolog levels. Anything
// else is info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init sets the global level from level and sends log output to w in
// human readable form.
func Init(level string, w io.Writer) {
	lvl := ParseLevel(level)

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: true})

	log.Debug().
		Str("level", lvl.String()).
		Str("time_format", "unix ms").
		Msg("logger initialized")
}
