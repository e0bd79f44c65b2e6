// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/audio"
	codec "github.com/ik5/audmux/codecs/vorbis"
	"github.com/ik5/audmux/formats/ogg"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

// Decoder decodes the first Vorbis stream of an Ogg file with
// formats/ogg and codecs/vorbis. Encoder delay and padding are trimmed by
// the codec, and samples are clipped to [-1, 1].
type Decoder struct {
	// BufferLen is the read-ahead ring size; zero selects the default.
	BufferLen int
}

var _ audio.Decoder = Decoder{}

// Decode reads the stream headers from r. The returned source does not close
// r.
func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	reader, err := ogg.NewReader(stream.NewSource(r), media.FormatOptions{
		EnableGapless: true,
		BufferLen:     d.BufferLen,
	})
	if err != nil {
		return nil, err
	}

	track, ok := vorbisTrack(reader.Tracks())
	if !ok {
		return nil, ErrNoVorbis
	}

	dec, err := codec.NewDecoder(track.Params, media.DecoderOptions{})
	if err != nil {
		return nil, err
	}

	p := &packetPuller{reader: reader, dec: dec, trackID: track.ID}

	return audio.NewPullSource(int(track.Params.SampleRate), track.Params.Channels.Count(), p.pull, nil), nil
}

func vorbisTrack(tracks []media.Track) (media.Track, bool) {
	for _, t := range tracks {
		if t.Params.Codec == media.CodecVorbis {
			return t, true
		}
	}
	return media.Track{}, false
}

// packetPuller feeds packets of one track to a decoder and trims the
// output.
type packetPuller struct {
	reader  media.FormatReader
	dec     media.PacketDecoder
	trackID uint32
}

func (p *packetPuller) pull() (*audio.AudioBuffer[float32], error) {
	for {
		pkt, err := p.reader.NextPacket()
		if err != nil {
			if errors.Is(err, media.ErrEndOfStream) {
				return nil, io.EOF
			}
			return nil, err
		}

		if pkt.TrackID != p.trackID {
			continue
		}

		buf, err := p.dec.Decode(pkt)
		if err != nil {
			if errors.Is(err, media.ErrDecode) {
				log.Warn().Err(err).Uint64("ts", pkt.Ts).Msg("vorbis: skipping undecodable packet")
				continue
			}
			return nil, err
		}

		if buf.Frames() == 0 {
			continue
		}

		for ch := range buf.Spec().Channels.Count() {
			clip(buf.ChanMut(ch))
		}

		return buf, nil
	}
}

// clip limits samples to [-1, 1].
func clip(s []float32) {
	for i, v := range s {
		s[i] = min(max(v, -1), 1)
	}
}
