// SPDX-License-Identifier: EPL-2.0

// Package ogg demultiplexes Ogg physical streams into codec packets.
//
// A Reader synchronizes on the "OggS" capture pattern, verifies every page
// checksum and reassembles packets that span pages. Each logical stream
// becomes one media.Track, identified by its serial number, with a mapper
// chosen from the first packet: Vorbis, Opus and FLAC are recognized, other
// streams are skipped.
//
// Corrupt pages are logged and skipped; the reader resynchronizes on the
// next capture pattern. Packet timestamps are derived from the granule
// position at the end of each page. With FormatOptions.EnableGapless set,
// encoder delay and padding are reported through the packet trim fields.
//
// Example usage:
//
//	f, _ := os.Open("music.ogg")
//	r, err := ogg.NewReader(stream.NewSource(f), media.FormatOptions{})
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	for {
//		pkt, err := r.NextPacket()
//		if errors.Is(err, media.ErrEndOfStream) {
//			break
//		}
//		...
//	}
package ogg
