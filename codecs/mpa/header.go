// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/media"
)

// HeaderLen is the size of the frame header word.
const HeaderLen = 4

type Version uint8

const (
	Mpeg2p5 Version = iota
	Mpeg2
	Mpeg1
)

func (v Version) String() string {
	switch v {
	case Mpeg1:
		return "MPEG-1"
	case Mpeg2:
		return "MPEG-2"
	default:
		return "MPEG-2.5"
	}
}

type Layer uint8

const (
	Layer1 Layer = iota + 1
	Layer2
	Layer3
)

func (l Layer) String() string {
	switch l {
	case Layer1:
		return "Layer I"
	case Layer2:
		return "Layer II"
	default:
		return "Layer III"
	}
}

type ChannelMode uint8

const (
	Stereo ChannelMode = iota
	JointStereo
	DualMono
	Mono
)

func (m ChannelMode) String() string {
	return [...]string{"stereo", "joint stereo", "dual mono", "mono"}[m]
}

// ModeExtension qualifies JointStereo. Layers 1 and 2 code subbands from
// Bound upwards with intensity stereo; Layer 3 switches mid/side and
// intensity stereo independently.
type ModeExtension struct {
	Bound     uint8
	MidSide   bool
	Intensity bool
}

type Emphasis uint8

const (
	EmphasisNone Emphasis = iota
	Emphasis50_15
	EmphasisReserved
	EmphasisCCITTJ17
)

// FrameHeader is a parsed MPEG audio frame header.
type FrameHeader struct {
	Version Version
	Layer   Layer

	Bitrate    uint32
	SampleRate uint32
	// SampleRateIdx indexes the nine MPEG-1, MPEG-2 and MPEG-2.5 sample
	// rates, in that order.
	SampleRateIdx int

	Mode     ChannelMode
	ModeExt  ModeExtension
	Emphasis Emphasis

	Copyright bool
	Original  bool
	Padding   bool
	HasCRC    bool

	// FrameSize is the number of bytes that follow the header word.
	FrameSize int
}

var bitrates = [5][15]uint32{
	// MPEG-1 Layer 1, 2, 3
	{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448},
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
	// MPEG-2 and 2.5 Layer 1, Layer 2 and 3
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
}

var sampleRates = [9]uint32{
	44100, 48000, 32000,
	22050, 24000, 16000,
	11025, 12000, 8000,
}

// ParseFrameHeader parses a header word. The word is laid out as
//
//	1111_1111 111v_vlly rrrr_hhpx mmmm_coee
//
// with version v, layer l, no-CRC flag y, bitrate r, sample rate h,
// padding p, private bit x, mode m (two bits of mode, two of extension),
// copyright c, original o and emphasis e.
func ParseFrameHeader(word uint32) (FrameHeader, error) {
	if !IsSyncWord(word) {
		return FrameHeader{}, wrapErr(ErrInvalidHeader, "no sync word in %#08x", word)
	}

	var h FrameHeader

	switch (word >> 19) & 0x3 {
	case 0b00:
		h.Version = Mpeg2p5
	case 0b10:
		h.Version = Mpeg2
	case 0b11:
		h.Version = Mpeg1
	default:
		return FrameHeader{}, wrapErr(ErrInvalidHeader, "reserved version")
	}

	switch (word >> 17) & 0x3 {
	case 0b01:
		h.Layer = Layer3
	case 0b10:
		h.Layer = Layer2
	case 0b11:
		h.Layer = Layer1
	default:
		return FrameHeader{}, wrapErr(ErrInvalidHeader, "reserved layer")
	}

	h.HasCRC = (word>>16)&0x1 == 0

	bitrateIdx := (word >> 12) & 0xf
	switch bitrateIdx {
	case 0:
		return FrameHeader{}, ErrFreeFormat
	case 15:
		return FrameHeader{}, wrapErr(ErrInvalidHeader, "bitrate index 15")
	}
	h.Bitrate = 1000 * bitrates[bitrateTable(h.Version, h.Layer)][bitrateIdx]

	rateIdx := int((word >> 10) & 0x3)
	if rateIdx == 3 {
		return FrameHeader{}, wrapErr(ErrInvalidHeader, "reserved sample rate")
	}
	switch h.Version {
	case Mpeg1:
		h.SampleRateIdx = rateIdx
	case Mpeg2:
		h.SampleRateIdx = 3 + rateIdx
	case Mpeg2p5:
		h.SampleRateIdx = 6 + rateIdx
	}
	h.SampleRate = sampleRates[h.SampleRateIdx]

	h.Padding = (word>>9)&0x1 != 0

	h.Mode = ChannelMode((word >> 6) & 0x3)
	if h.Mode == JointStereo {
		ext := uint8((word >> 4) & 0x3)
		if h.Layer == Layer3 {
			h.ModeExt = ModeExtension{MidSide: ext&0x2 != 0, Intensity: ext&0x1 != 0}
		} else {
			h.ModeExt = ModeExtension{Bound: 4 * (ext + 1)}
		}
	}

	// Layer 2 of MPEG-1 restricts the bitrates allowed per channel mode.
	if h.Version == Mpeg1 && h.Layer == Layer2 {
		kbps := h.Bitrate / 1000
		switch {
		case h.Mode == Mono && kbps >= 224:
			return FrameHeader{}, wrapErr(ErrInvalidHeader, "%d kbps is not allowed for mono", kbps)
		case h.Mode != Mono && (kbps == 32 || kbps == 48 || kbps == 56 || kbps == 80):
			return FrameHeader{}, wrapErr(ErrInvalidHeader, "%d kbps is not allowed for stereo", kbps)
		}
	}

	h.Copyright = (word>>3)&0x1 != 0
	h.Original = (word>>2)&0x1 != 0

	h.Emphasis = Emphasis(word & 0x3)
	if h.Emphasis == EmphasisReserved {
		return FrameHeader{}, wrapErr(ErrInvalidHeader, "reserved emphasis")
	}

	h.FrameSize = frameSize(h)

	return h, nil
}

func bitrateTable(v Version, l Layer) int {
	if v == Mpeg1 {
		return int(l) - 1
	}
	if l == Layer1 {
		return 3
	}
	return 4
}

// frameSize applies the slot formula and drops the header word.
func frameSize(h FrameHeader) int {
	pad := 0
	if h.Padding {
		pad = 1
	}

	br, sr := int(h.Bitrate), int(h.SampleRate)

	switch {
	case h.Layer == Layer1:
		return (12*br/sr+pad)*4 - HeaderLen
	case h.Layer == Layer3 && h.Version != Mpeg1:
		return 72*br/sr + pad - HeaderLen
	default:
		return 144*br/sr + pad - HeaderLen
	}
}

// Channels returns 1 for mono and 2 otherwise.
func (h FrameHeader) Channels() int {
	if h.Mode == Mono {
		return 1
	}
	return 2
}

// Granules is the number of 576-sample granules in a Layer 3 frame.
func (h FrameHeader) Granules() int {
	if h.Version == Mpeg1 {
		return 2
	}
	return 1
}

// Duration is the number of frames of audio a frame decodes to.
func (h FrameHeader) Duration() uint64 {
	switch h.Layer {
	case Layer1:
		return 384
	case Layer2:
		return 1152
	default:
		return 576 * uint64(h.Granules())
	}
}

// SideInfoLen is the size of the Layer 3 side information.
func (h FrameHeader) SideInfoLen() int {
	switch {
	case h.Version == Mpeg1 && h.Mode == Mono:
		return 17
	case h.Version == Mpeg1:
		return 32
	case h.Mode == Mono:
		return 9
	default:
		return 17
	}
}

func (h FrameHeader) IsIntensityStereo() bool {
	if h.Mode != JointStereo {
		return false
	}
	return h.Layer != Layer3 || h.ModeExt.Intensity
}

func (h FrameHeader) Codec() media.CodecType {
	switch h.Layer {
	case Layer1:
		return media.CodecMP1
	case Layer2:
		return media.CodecMP2
	default:
		return media.CodecMP3
	}
}

func (h FrameHeader) Spec() audio.SignalSpec {
	layout := audio.LayoutStereo
	if h.Mode == Mono {
		layout = audio.LayoutMono
	}
	return audio.NewSignalSpecWithLayout(h.SampleRate, layout)
}

// IsSimilar reports whether o could belong to the same stream as h.
func (h FrameHeader) IsSimilar(o FrameHeader) bool {
	return h.Version == o.Version &&
		h.Layer == o.Layer &&
		h.SampleRate == o.SampleRate &&
		h.Channels() == o.Channels()
}
