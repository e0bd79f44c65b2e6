// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/codecs/mpa"
	"github.com/ik5/audmux/internal/checksum"
	"github.com/ik5/audmux/stream"
)

const (
	// lameDecoderDelay is the delay of the reference decoder, which LAME
	// leaves out of the delay and padding it stores.
	lameDecoderDelay = 528 + 1

	minLameExtLen = 24
	lameExtLen    = 36

	vbriOffset    = 32
	minVBRITagLen = 26
)

var (
	xingID = []byte("Xing")
	infoID = []byte("Info")
	vbriID = []byte("VBRI")
)

// InfoTag is a Xing or Info tag, the first frame of many VBR and CBR files.
// It replaces the audio of that frame.
type InfoTag struct {
	// CBR is set for the "Info" id.
	CBR bool

	// Frames is the number of MPEG frames in the stream, tag frame excluded.
	Frames    uint32
	HasFrames bool
	Bytes     uint32
	HasBytes  bool
	// TOC is the 100 entry seek table, when present.
	TOC        []byte
	Quality    uint32
	HasQuality bool

	// Lame is the LAME extension. It is nil when missing, truncated or
	// failing its checksum.
	Lame *LameTag
}

// LameTag is the LAME extension of an InfoTag.
type LameTag struct {
	Encoder string

	// ReplayGainPeak is zero when unset.
	ReplayGainPeak float32
	// Radio and audiophile replay gain in dB.
	RadioGain         float32
	HasRadioGain      bool
	AudiophileGain    float32
	HasAudiophileGain bool

	// EncoderDelay and EncoderPadding are in frames, with the reference
	// decoder delay already applied.
	EncoderDelay   uint32
	EncoderPadding uint32
}

// VBRITag is the Fraunhofer VBR tag.
type VBRITag struct {
	Bytes  uint32
	Frames uint32
}

// ReadInfoTag reads a Xing or Info tag from frame, header word included. A
// missing or malformed tag returns false.
func ReadInfoTag(frame []byte, h mpa.FrameHeader) (InfoTag, bool) {
	if !isMaybeInfoTag(frame, h) {
		return InfoTag{}, false
	}

	offset := mpa.HeaderLen + h.SideInfoLen()

	crc := checksum.NewCRC16ANSI(0)
	crc.ProcessBytes(frame[:offset])

	buf := stream.NewBufReader(frame[offset:])
	r := stream.NewMonitorReader(buf, crc)

	id, err := r.ReadQuadBytes()
	if err != nil {
		return InfoTag{}, false
	}

	tag := InfoTag{CBR: bytes.Equal(id[:], infoID)}

	flags, err := stream.ReadU32BE(r)
	if err != nil {
		return InfoTag{}, false
	}

	if flags&0x1 != 0 {
		if tag.Frames, err = stream.ReadU32BE(r); err != nil {
			return InfoTag{}, false
		}
		tag.HasFrames = true
	}
	if flags&0x2 != 0 {
		if tag.Bytes, err = stream.ReadU32BE(r); err != nil {
			return InfoTag{}, false
		}
		tag.HasBytes = true
	}
	if flags&0x4 != 0 {
		if tag.TOC, err = stream.ReadBoxedSlice(r, 100); err != nil {
			return InfoTag{}, false
		}
	}
	if flags&0x8 != 0 {
		if tag.Quality, err = stream.ReadU32BE(r); err != nil {
			return InfoTag{}, false
		}
		tag.HasQuality = true
	}

	if buf.BytesAvailable() < minLameExtLen {
		log.Debug().Msg("mp3: frame too short for a LAME tag")
		return tag, true
	}

	lame, err := readLameTag(r, buf, h, crc)
	if err != nil {
		return InfoTag{}, false
	}
	tag.Lame = lame

	return tag, true
}

func readLameTag(r *stream.MonitorReader[*checksum.CRC16ANSI], buf *stream.BufReader, h mpa.FrameHeader, crc *checksum.CRC16ANSI) (*LameTag, error) {
	var lame LameTag

	encoder := make([]byte, 9)
	if err := r.ReadExact(encoder); err != nil {
		return nil, err
	}
	if isZero(encoder) {
		return nil, nil
	}
	lame.Encoder = strings.TrimRight(string(encoder), "\x00 ")

	// Revision and lowpass.
	if err := r.IgnoreBytes(2); err != nil {
		return nil, err
	}

	peak, err := stream.ReadU32BE(r)
	if err != nil {
		return nil, err
	}
	// 9.23 fixed point.
	lame.ReplayGainPeak = float32(peak) / (1 << 23)

	radio, err := stream.ReadU16BE(r)
	if err != nil {
		return nil, err
	}
	lame.RadioGain, lame.HasRadioGain = replayGain(radio, 1)

	audiophile, err := stream.ReadU16BE(r)
	if err != nil {
		return nil, err
	}
	lame.AudiophileGain, lame.HasAudiophileGain = replayGain(audiophile, 2)

	// Encoding flags and bitrate.
	if err := r.IgnoreBytes(2); err != nil {
		return nil, err
	}

	trim, err := stream.ReadU24BE(r)
	if err != nil {
		return nil, err
	}

	switch string(encoder[:4]) {
	case "LAME", "Lavf", "Lavc":
		lame.EncoderDelay = lameDecoderDelay + trim>>12
		if padding := trim & 0xfff; padding > lameDecoderDelay {
			lame.EncoderPadding = padding - lameDecoderDelay
		}
	}

	if buf.BytesAvailable() < lameExtLen-minLameExtLen {
		return &lame, nil
	}

	// Misc, mp3 gain, surround, music length and music CRC.
	if err := r.IgnoreBytes(1 + 1 + 2 + 4 + 2); err != nil {
		return nil, err
	}

	// LAME always writes the tag CRC, other encoders only with the
	// protection bit set.
	if !h.HasCRC && string(encoder[:4]) != "LAME" {
		return &lame, nil
	}

	want := crc.Sum()
	got, err := stream.ReadU16BE(buf)
	if err != nil {
		return nil, err
	}

	if got != want {
		log.Debug().Uint16("crc", got).Uint16("want", want).Msg("mp3: LAME tag crc mismatch")
		return nil, nil
	}

	return &lame, nil
}

// replayGain decodes a LAME replay gain field whose 3-bit name code must be
// name.
func replayGain(v uint16, name uint16) (float32, bool) {
	if v>>13 != name {
		return 0, false
	}

	gain := float32(v&0x1ff) / 10
	if v&0x200 != 0 {
		gain = -gain
	}
	return gain, true
}

func isMaybeInfoTag(frame []byte, h mpa.FrameHeader) bool {
	if h.Layer != mpa.Layer3 {
		return false
	}

	offset := mpa.HeaderLen + h.SideInfoLen()
	if len(frame) < offset+4 {
		return false
	}

	id := frame[offset : offset+4]
	if !bytes.Equal(id, xingID) && !bytes.Equal(id, infoID) {
		return false
	}

	return isZero(frame[mpa.HeaderLen:offset])
}

// ReadVBRITag reads a VBRI tag from frame, header word included.
func ReadVBRITag(frame []byte, h mpa.FrameHeader) (VBRITag, bool) {
	if h.Layer != mpa.Layer3 {
		return VBRITag{}, false
	}

	start := mpa.HeaderLen + vbriOffset
	if len(frame) < start+minVBRITagLen {
		return VBRITag{}, false
	}
	if !bytes.Equal(frame[start:start+4], vbriID) || !isZero(frame[mpa.HeaderLen:start]) {
		return VBRITag{}, false
	}

	tag := frame[start+4:]

	// Version, then delay and quality.
	if binary.BigEndian.Uint16(tag) != 1 {
		return VBRITag{}, false
	}

	return VBRITag{
		Bytes:  binary.BigEndian.Uint32(tag[6:]),
		Frames: binary.BigEndian.Uint32(tag[10:]),
	}, true
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// isTagFrame reports whether frame carries a tag instead of audio.
func isTagFrame(frame []byte, h mpa.FrameHeader) bool {
	if _, ok := ReadInfoTag(frame, h); ok {
		return true
	}
	_, ok := ReadVBRITag(frame, h)
	return ok
}
