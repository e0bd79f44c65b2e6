// SPDX-License-Identifier: EPL-2.0

package audmux

import (
	"fmt"
	"strings"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/codecs/mpa"
	"github.com/ik5/audmux/codecs/vorbis"
	"github.com/ik5/audmux/formats/mp3"
	"github.com/ik5/audmux/formats/ogg"
	vorbisfile "github.com/ik5/audmux/formats/vorbis"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

// ReferenceFormat is the registry key of the oggvorbis backed decoder.
const ReferenceFormat = "ogg-ref"

// NewRegistry returns the PCM decoders keyed by extension: ogg and oga
// through formats/vorbis, mp3 through go-mp3, and ReferenceFormat.
func NewRegistry(opts media.FormatOptions) *audio.Registry {
	reg := audio.NewRegistry()

	vorbisDec := vorbisfile.Decoder{BufferLen: opts.BufferLen}
	reg.Register("ogg", vorbisDec)
	reg.Register("oga", vorbisDec)
	reg.Register("mp3", mp3.Decoder{})
	reg.Register(ReferenceFormat, vorbisfile.ReferenceDecoder{})

	return reg
}

// FormatForPath returns the demultiplexer format name for a file name or
// URL path, which is its extension without query or fragment.
func FormatForPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 && !strings.ContainsRune(path[i:], '/') {
		return strings.ToLower(path[i+1:])
	}
	return ""
}

// NewFormatReader opens src with the demultiplexer for format. Ogg files
// (ogg, oga, ogx, opus, spx) go to formats/ogg and MPEG audio (mp1, mp2,
// mp3, mpa) to formats/mp3.
func NewFormatReader(format string, src stream.MediaSource, opts media.FormatOptions) (media.FormatReader, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "ogg", "oga", "ogx", "opus", "spx":
		return ogg.NewReader(src, opts)
	case "mp1", "mp2", "mp3", "mpa":
		return mp3.NewReader(src, opts)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// NewPacketDecoder returns the decoder for a track: codecs/vorbis for
// Vorbis and codecs/mpa for MPEG audio.
func NewPacketDecoder(params media.CodecParameters, opts media.DecoderOptions) (media.PacketDecoder, error) {
	var (
		dec media.PacketDecoder
		err error
	)

	switch params.Codec {
	case media.CodecVorbis:
		dec, err = vorbis.NewDecoder(params, opts)
	case media.CodecMP1, media.CodecMP2, media.CodecMP3:
		dec, err = mpa.NewDecoder(params, opts)
	default:
		return nil, media.UnsupportedError("audmux: no decoder for " + params.Codec.String())
	}

	if err != nil {
		return nil, err
	}
	return dec, nil
}
