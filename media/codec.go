// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"

	"github.com/ik5/audmux/audio"
)

// CodecType identifies the codec of a track.
type CodecType uint32

const (
	CodecNull CodecType = 0

	CodecVorbis CodecType = 0x1000
	CodecMP1    CodecType = 0x1001
	CodecMP2    CodecType = 0x1002
	CodecMP3    CodecType = 0x1003
	CodecOpus   CodecType = 0x1004

	CodecFLAC CodecType = 0x2000
)

var codecNames = map[CodecType]string{
	CodecNull:   "null",
	CodecVorbis: "vorbis",
	CodecMP1:    "mp1",
	CodecMP2:    "mp2",
	CodecMP3:    "mp3",
	CodecOpus:   "opus",
	CodecFLAC:   "flac",
}

func (c CodecType) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("codec(%#x)", uint32(c))
}

// SampleFormat describes how an encoded or decoded sample is stored.
type SampleFormat uint8

const (
	SampleFormatUnknown SampleFormat = iota
	SampleFormatU8
	SampleFormatU16
	SampleFormatU24
	SampleFormatU32
	SampleFormatS8
	SampleFormatS16
	SampleFormatS24
	SampleFormatS32
	SampleFormatF32
	SampleFormatF64
)

var sampleFormatNames = [...]string{
	"unknown", "u8", "u16", "u24", "u32", "s8", "s16", "s24", "s32", "f32", "f64",
}

func (f SampleFormat) String() string {
	if int(f) < len(sampleFormatNames) {
		return sampleFormatNames[f]
	}
	return "unknown"
}

// CodecParameters describes one track. A zero field means the value is not
// known (yet); demuxers fill them in as header packets are parsed.
type CodecParameters struct {
	Codec CodecType

	SampleRate uint32
	TimeBase   TimeBase

	// NFrames is the length of the stream in frames.
	NFrames uint64
	// StartTs is the timestamp of the first frame.
	StartTs uint64

	SampleFormat       SampleFormat
	BitsPerSample      uint32
	BitsPerCodedSample uint32

	Channels audio.Channels
	Layout   audio.Layout

	// Delay is the number of leading frames inserted by the encoder.
	Delay   uint32
	// Padding is the number of trailing frames inserted by the encoder.
	Padding uint32

	MaxFramesPerPacket  uint64
	FramesPerBlock      uint64
	PacketDataIntegrity bool

	// ExtraData is codec defined. For Vorbis it is the identification packet
	// followed by the setup packet.
	ExtraData []byte
}

// Duration returns the length of the stream in seconds, if both the frame
// count and the time base are known.
func (p CodecParameters) Duration() (Time, bool) {
	if p.NFrames == 0 || p.TimeBase.IsZero() {
		return Time{}, false
	}
	return p.TimeBase.CalcTime(p.NFrames), true
}

func (p CodecParameters) String() string {
	return fmt.Sprintf("%s %dHz %s", p.Codec, p.SampleRate, p.Channels)
}
