// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux"
	"github.com/ik5/audmux/codecs/mpa"
	"github.com/ik5/audmux/media"
)

func (c *cli) packets(args []string) error {
	fs := c.newFlagSet("packets")
	format := fs.String("format", "", "container format (default from the file extension)")
	gapless := fs.Bool("gapless", c.cfg.Gapless, "trim encoder delay and padding")
	track := fs.Int("track", -1, "only list packets of this track")
	start := fs.Float64("start", 0, "seek to this many seconds first")
	limit := fs.Int("n", 0, "stop after this many packets (0 lists all)")
	decode := fs.Bool("decode", false, "decode every packet and report its frames")

	arg, err := input(fs, args)
	if err != nil {
		return err
	}

	r, err := c.openReader(arg, *format, *gapless)
	if err != nil {
		return err
	}
	defer r.Close()

	if *start > 0 {
		to := media.SeekToTime(media.TimeFromSeconds(*start))
		if *track >= 0 {
			to = media.SeekToTimeOnTrack(media.TimeFromSeconds(*start), uint32(*track))
		}

		seeked, err := r.Seek(media.SeekAccurate, to)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "seeked track %d to %d (required %d)\n", seeked.TrackID, seeked.ActualTs, seeked.RequiredTs)
	}

	var decoders map[uint32]media.PacketDecoder
	if *decode {
		decoders = make(map[uint32]media.PacketDecoder)
		for _, t := range r.Tracks() {
			dec, err := audmux.NewPacketDecoder(t.Params, media.DecoderOptions{Verify: true})
			if err != nil {
				log.Warn().Err(err).Uint32("track", t.ID).Msg("track will not be decoded")
				continue
			}
			decoders[t.ID] = dec
		}
	}

	fmt.Fprintln(c.stdout, "track\tts\tdur\ttrim\tbytes\tdecoded")

	for n := 0; *limit == 0 || n < *limit; {
		pkt, err := r.NextPacket()
		if errors.Is(err, media.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}

		if *track >= 0 && pkt.TrackID != uint32(*track) {
			continue
		}
		n++

		fmt.Fprintf(c.stdout, "%d\t%d\t%d\t%d+%d\t%d\t", pkt.TrackID, pkt.Ts, pkt.Dur, pkt.TrimStart, pkt.TrimEnd, len(pkt.Data))
		describeDecode(c.stdout, decoders[pkt.TrackID], pkt)
	}

	return nil
}

// describeDecode decodes pkt with dec and prints the outcome. MPEG audio
// frames are described by their side information, since they are parsed
// but not decoded to samples.
func describeDecode(w io.Writer, dec media.PacketDecoder, pkt *media.Packet) {
	switch d := dec.(type) {
	case nil:
		fmt.Fprintln(w, "-")

	case *mpa.Decoder:
		h, frame, err := d.ReadFrame(pkt.Data)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return
		}

		var bits int
		for gr := range h.Granules() {
			for ch := range h.Channels() {
				bits += int(frame.Granules[gr].Channels[ch].Part23Length)
			}
		}
		fmt.Fprintf(w, "main_data_begin=%d part2_3=%d\n", frame.MainDataBegin, bits)

	default:
		buf, err := d.Decode(pkt)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return
		}
		fmt.Fprintf(w, "%d frames\n", buf.Frames())
	}
}
