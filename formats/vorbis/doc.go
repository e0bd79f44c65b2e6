// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files to interleaved float32 samples.
//
// Decoder demultiplexes the file with formats/ogg and decodes the first
// Vorbis stream with codecs/vorbis. Encoder delay and end padding given by
// the page granule positions are trimmed, so the source yields exactly the
// frames the stream declares:
//
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//	buf := make([]float32, src.BufSize())
//	n, err := src.ReadSamples(buf)
//
// Packets that fail to decode are logged and skipped. Stereo output is
// interleaved as [L0, R0, L1, R1, ...].
//
// ReferenceDecoder produces the same kind of source with
// github.com/jfreymuth/oggvorbis. It is kept as an independent decoder to
// compare against.
package vorbis
