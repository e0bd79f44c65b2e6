// SPDX-License-Identifier: EPL-2.0

// Package audmux ties the demultiplexers, packet decoders and PCM decoders of
// the module together.
//
// NewFormatReader picks a demultiplexer by format name and NewPacketDecoder a
// decoder by codec, which is all a packet loop needs:
//
//	r, err := audmux.NewFormatReader("ogg", stream.NewSource(f), media.FormatOptions{EnableGapless: true})
//	if err != nil {
//	    // Handle error
//	}
//	track, _ := r.DefaultTrack()
//	dec, err := audmux.NewPacketDecoder(track.Params, media.DecoderOptions{})
//
// For plain PCM, NewRegistry maps file extensions to audio.Decoder values and
// ResampleToMono16 turns any audio.Source into mono 16-bit samples at a
// chosen rate:
//
//	dec, _ := audmux.NewRegistry(media.FormatOptions{}).ForPath("in.ogg")
//	src, _ := dec.Decode(f)
//	pcm, rate, err := audmux.ResampleToMono16(src, 16000, 4096)
package audmux
