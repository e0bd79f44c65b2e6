// SPDX-License-Identifier: EPL-2.0

// Package config loads settings for the command line tool from the
// environment, optionally seeded from a .env file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	EnvGapless   = "AUDMUX_GAPLESS"
	EnvBufferLen = "AUDMUX_BUFFER_LEN"
	EnvLogLevel  = "LOG_LEVEL"
)

// Config holds the defaults for command line flags.
type Config struct {
	Gapless   bool
	BufferLen int
	LogLevel  string
}

// Default is used for variables that are unset.
var Default = Config{
	Gapless:  true,
	LogLevel: "info",
}

// findInParents returns the first directory from dir upwards holding
// filename.
func findInParents(dir, filename string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, filename)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// LoadEnv sets environment variables from KEY=VALUE lines of filename.
// When the file is not in the working directory it is looked up in the
// parent directories. Variables already set are left alone. A missing file
// is not an error.
func LoadEnv(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return wdErr
		}

		dir, findErr := findInParents(wd, filename)
		if errors.Is(findErr, os.ErrNotExist) {
			return nil
		}

		f, err = os.Open(filepath.Join(dir, filename))
		if err != nil {
			return err
		}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// FromEnv reads Config from the environment through lookup, usually
// os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default

	if v, ok := lookup(EnvGapless); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", EnvGapless, err)
		}
		cfg.Gapless = b
	}

	if v, ok := lookup(EnvBufferLen); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("config: %s: invalid length %q", EnvBufferLen, v)
		}
		cfg.BufferLen = n
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}
