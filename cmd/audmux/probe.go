// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"

	"github.com/ik5/audmux/media"
)

func (c *cli) probe(args []string) error {
	fs := c.newFlagSet("probe")
	format := fs.String("format", "", "container format (default from the file extension)")
	gapless := fs.Bool("gapless", c.cfg.Gapless, "report lengths without encoder delay and padding")

	arg, err := input(fs, args)
	if err != nil {
		return err
	}

	r, err := c.openReader(arg, *format, *gapless)
	if err != nil {
		return err
	}
	defer r.Close()

	def, _ := r.DefaultTrack()
	for _, t := range r.Tracks() {
		printTrack(c.stdout, t, t.ID == def.ID)
	}

	if rev, ok := r.Metadata().Current(); ok {
		printMetadata(c.stdout, rev)
	}

	return nil
}

func printTrack(w io.Writer, t media.Track, isDefault bool) {
	p := t.Params

	mark := ""
	if isDefault {
		mark = " (default)"
	}
	fmt.Fprintf(w, "track %d%s: %s\n", t.ID, mark, p)

	if !p.TimeBase.IsZero() {
		fmt.Fprintf(w, "  time base: %s\n", p.TimeBase)
	}
	if p.NFrames > 0 {
		fmt.Fprintf(w, "  frames:    %d\n", p.NFrames)
	}
	if d, ok := p.Duration(); ok {
		fmt.Fprintf(w, "  duration:  %s\n", d)
	}
	if p.Delay > 0 || p.Padding > 0 {
		fmt.Fprintf(w, "  delay:     %d\n  padding:   %d\n", p.Delay, p.Padding)
	}
	if t.Language != "" {
		fmt.Fprintf(w, "  language:  %s\n", t.Language)
	}
}

func printMetadata(w io.Writer, rev *media.MetadataRevision) {
	if rev.Vendor == "" && len(rev.Tags) == 0 {
		return
	}

	fmt.Fprintln(w, "metadata:")
	if rev.Vendor != "" {
		fmt.Fprintf(w, "  vendor: %s\n", rev.Vendor)
	}
	for _, tag := range rev.Tags {
		fmt.Fprintf(w, "  %s=%s\n", tag.Key, tag.Value)
	}
}
