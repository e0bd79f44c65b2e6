// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux"
	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/formats/wav"
	"github.com/ik5/audmux/media"
)

func (c *cli) decode(args []string) error {
	fs := c.newFlagSet("decode")
	format := fs.String("format", "", "decoder: ogg, oga, mp3 or "+audmux.ReferenceFormat+" (default from the file extension)")
	out := fs.String("o", "-", "output WAV file, - for standard output")
	mono := fs.Bool("mono", false, "mix down to one channel")
	rate := fs.Int("rate", 0, "resample to this rate in Hz (0 keeps the source rate)")

	arg, err := input(fs, args)
	if err != nil {
		return err
	}
	if *rate < 0 {
		return fmt.Errorf("invalid rate %d", *rate)
	}

	key, err := formatOf(*format, arg)
	if err != nil {
		return err
	}

	dec, ok := audmux.NewRegistry(media.FormatOptions{BufferLen: c.cfg.BufferLen}).Get(key)
	if !ok {
		return fmt.Errorf("%w %q", audmux.ErrUnknownFormat, key)
	}

	in, err := c.open(arg)
	if err != nil {
		return err
	}
	defer in.Close()

	src, err := dec.Decode(in)
	if err != nil {
		return err
	}

	if *rate > 0 && *rate != src.SampleRate() {
		src = audio.NewResampler(src, *rate)
	}
	if *mono {
		src = audio.NewMonoMixer(src)
	}
	defer src.Close()

	log.Debug().
		Str("decoder", key).
		Int("rate", src.SampleRate()).
		Int("channels", src.Channels()).
		Msg("decoding")

	if *out == "-" {
		pcm, err := wav.ReadAll16(src)
		if err != nil {
			return err
		}
		return wav.WritePCM16(c.stdout, src.SampleRate(), src.Channels(), pcm)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}

	frames, err := wav.Write(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Join(err, os.Remove(*out))
	}

	log.Info().Str("file", *out).Int64("frames", frames).Msg("decoded")
	return nil
}
