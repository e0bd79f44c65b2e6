// SPDX-License-Identifier: EPL-2.0

package media

import "github.com/ik5/audmux/audio"

// FormatOptions configures a FormatReader. The zero value is usable.
type FormatOptions struct {
	// EnableGapless trims encoder delay and padding from packets.
	EnableGapless bool
	// BufferLen is the read-ahead ring size in bytes. Zero selects the
	// default; other values must be a power of two of at least 32 KiB.
	BufferLen     int
}

// DecoderOptions configures a PacketDecoder. The zero value is usable.
type DecoderOptions struct {
	// Verify asks the decoder to check decoded audio against any
	// verification data in the stream, when it supports it.
	Verify bool
}

// FormatReader demultiplexes a container into packets.
//
// Seeking invalidates the state of any decoder fed by the reader; reset
// decoders after a successful Seek.
type FormatReader interface {
	Tracks() []Track
	// DefaultTrack is the first track with a known codec.
	DefaultTrack() (Track, bool)
	Metadata() *MetadataLog

	// NextPacket returns ErrEndOfStream once all packets are consumed.
	NextPacket() (*Packet, error)
	Seek(mode SeekMode, to SeekTo) (SeekedTo, error)

	Close() error
}

// PacketDecoder decodes packets of one track.
//
// The buffer returned by Decode is owned by the decoder and overwritten by the
// next call.
type PacketDecoder interface {
	CodecParams() CodecParameters
	Decode(pkt *Packet) (*audio.AudioBuffer[float32], error)
	// Reset clears state that depends on previous packets.
	Reset()
	LastDecoded() *audio.AudioBuffer[float32]
}

// DefaultTrack returns the first track whose codec is known.
func DefaultTrack(tracks []Track) (Track, bool) {
	for _, t := range tracks {
		if t.Params.Codec != CodecNull {
			return t, true
		}
	}
	return Track{}, false
}
