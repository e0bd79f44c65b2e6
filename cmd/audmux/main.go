// SPDX-License-Identifier: EPL-2.0

// Command audmux inspects and decodes Ogg and MPEG audio files.
//
//	audmux [-env file] [-log-level level] <command> [flags] <file|url|->
//
// Commands:
//
//	probe    print tracks, stream parameters and tags
//	packets  list demultiplexed packets, optionally decoding them
//	decode   decode to 16-bit PCM WAV
//
// Defaults come from AUDMUX_GAPLESS, AUDMUX_BUFFER_LEN and LOG_LEVEL, which
// may be set in a .env file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/internal/config"
	"github.com/ik5/audmux/internal/logger"
)

type cli struct {
	cfg    config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	run     func(c *cli, args []string) error
}

var commands = map[string]command{
	"probe":   {"print tracks, stream parameters and tags", (*cli).probe},
	"packets": {"list demultiplexed packets", (*cli).packets},
	"decode":  {"decode to 16-bit PCM WAV", (*cli).decode},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("audmux", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "file of KEY=VALUE defaults")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (default $LOG_LEVEL or info)")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := config.LoadEnv(*envFile); err != nil {
		fmt.Fprintf(stderr, "audmux: %v\n", err)
		return 1
	}

	cfg, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "audmux: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.Init(cfg.LogLevel, stderr)

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		log.Error().Str("command", name).Msg("unknown command")
		fs.Usage()
		return 2
	}

	c := &cli{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := cmd.run(c, fs.Args()[1:]); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			return 2
		}
		log.Error().Err(err).Str("command", name).Msg("failed")
		return 1
	}

	return 0
}

var errUsage = errors.New("usage")

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "usage: audmux [flags] <command> [command flags] <file|url|->")
	fmt.Fprintln(w, "\ncommands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}

	fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
}

// newFlagSet returns a flag set for a command taking one input argument.
func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("audmux "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: audmux %s [flags] <file|url|->\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// input parses args with fs and returns the single input argument.
func input(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", err
		}
		return "", errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", errUsage
	}
	return fs.Arg(0), nil
}

// formatOf is the explicit format or the one implied by the input name.
func formatOf(explicit, path string) (string, error) {
	if explicit != "" {
		return strings.ToLower(strings.TrimPrefix(explicit, ".")), nil
	}
	if f := formatForPath(path); f != "" {
		return f, nil
	}
	return "", fmt.Errorf("cannot tell the format of %q, use -format", path)
}
