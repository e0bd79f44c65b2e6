// SPDX-License-Identifier: EPL-2.0

// Package mp3 reads raw MPEG audio streams.
//
// # Demultiplexing
//
// Reader implements media.FormatReader. Each packet is one frame, header
// word included, ready for codecs/mpa.Decoder:
//
//	r, err := mp3.NewReader(stream.NewSource(f), media.FormatOptions{EnableGapless: true})
//	if err != nil {
//	    // Handle error
//	}
//	for {
//	    pkt, err := r.NextPacket()
//	    if errors.Is(err, media.ErrEndOfStream) {
//	        break
//	    }
//	    // Decode pkt
//	}
//
// The first frame is only accepted when a similar frame header follows it,
// so a sync word inside an ID3 tag or other leading data is skipped.
//
// # Tags
//
// A Xing or Info tag in the first frame gives the number of frames and,
// with a LAME extension, the encoder delay and padding used for gapless
// playback. A VBRI tag gives the number of frames. Without either tag the
// length of a seekable stream is estimated from the average size of its
// first 16 frames. Tag frames found later in the stream are skipped.
//
// # Seeking
//
// Seek reads frame headers until it reaches the frame holding the target.
// Seekable sources restart from the first frame to go backwards.
//
// # Decoding to PCM
//
// Decoder produces an audio.Source backed by github.com/hajimehoshi/go-mp3.
// Its output is always stereo float32 in [-1, 1]:
//
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//	mono := audio.NewMonoMixer(src)
package mp3
