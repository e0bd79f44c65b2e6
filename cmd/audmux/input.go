// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jfbus/httprs"
	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

func formatForPath(arg string) string {
	if arg == "-" {
		return ""
	}
	return audmux.FormatForPath(arg)
}

// stdinReader hides the Seek method of a piped *os.File.
type stdinReader struct {
	io.Reader
}

func (stdinReader) Close() error { return nil }

// open returns a reader for a file, an HTTP URL or standard input. HTTP
// responses with a known length can be seeked with range requests.
func (c *cli) open(arg string) (io.ReadCloser, error) {
	switch {
	case arg == "-":
		return stdinReader{c.stdin}, nil

	case isURL(arg):
		res, err := http.Get(arg)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, fmt.Errorf("GET %s: %s", arg, res.Status)
		}

		if res.ContentLength <= 0 || res.Header.Get("Accept-Ranges") != "bytes" {
			log.Debug().Str("url", arg).Msg("server does not support range requests, reading forward only")
			return res.Body, nil
		}
		return httprs.NewHttpReadSeeker(res), nil

	default:
		return os.Open(arg)
	}
}

// openReader opens arg with the demultiplexer for its format.
func (c *cli) openReader(arg, format string, gapless bool) (media.FormatReader, error) {
	format, err := formatOf(format, arg)
	if err != nil {
		return nil, err
	}

	in, err := c.open(arg)
	if err != nil {
		return nil, err
	}

	opts := media.FormatOptions{EnableGapless: gapless, BufferLen: c.cfg.BufferLen}

	r, err := audmux.NewFormatReader(format, stream.NewSource(in), opts)
	if err != nil {
		in.Close()
		return nil, err
	}
	return r, nil
}
