// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"bytes"
	"encoding/binary"
	"slices"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/codecs/vorbis"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

const (
	opusHeadLen = 19
	opusRate    = 48000

	// opusMaxPacketFrames is 120 ms at 48 kHz.
	opusMaxPacketFrames = 5760
)

var (
	opusHeadSig = []byte("OpusHead")
	opusTagsSig = []byte("OpusTags")
)

// Frame sizes at 48 kHz for each TOC configuration group.
var (
	opusSilkFrames   = [4]uint64{480, 960, 1920, 2880}
	opusHybridFrames = [2]uint64{480, 960}
	opusCeltFrames   = [4]uint64{120, 240, 480, 960}
)

type opusMapper struct {
	baseMapper
	hasTags bool
}

func detectOpus(pkt []byte) (mapper, bool) {
	if len(pkt) < opusHeadLen || !bytes.HasPrefix(pkt, opusHeadSig) {
		return nil, false
	}

	// Only the major version, the high nibble, must be zero.
	if pkt[8]&0xf0 != 0 {
		return nil, false
	}

	channels := int(pkt[9])
	if channels == 0 {
		return nil, false
	}

	m := &opusMapper{}
	m.params = media.CodecParameters{
		Codec:              media.CodecOpus,
		SampleRate:         opusRate,
		TimeBase:           media.NewTimeBase(1, opusRate),
		SampleFormat:       media.SampleFormatF32,
		Channels:           opusChannels(channels, pkt[18]),
		Delay:              uint32(binary.LittleEndian.Uint16(pkt[10:])),
		MaxFramesPerPacket: opusMaxPacketFrames,
		ExtraData:          slices.Clone(pkt),
	}

	return m, true
}

// opusChannels follows Vorbis order for mapping families 0 and 1.
func opusChannels(n int, family byte) audio.Channels {
	if family <= 1 && n <= 8 {
		return vorbis.Channels(n)
	}
	return audio.ChannelsFromCount(n)
}

func (m *opusMapper) name() string { return "opus" }

func (m *opusMapper) isReady() bool { return m.hasTags }

func (m *opusMapper) mapPacket(pkt []byte) mapResult {
	switch {
	case bytes.HasPrefix(pkt, opusTagsSig):
		var b media.MetadataBuilder
		if err := vorbis.ReadComment(stream.NewBufReader(pkt[len(opusTagsSig):]), &b); err != nil {
			return mapResult{kind: resultError, err: err}
		}
		m.hasTags = true
		return mapResult{kind: resultSideData, metadata: b.Metadata()}

	case bytes.HasPrefix(pkt, opusHeadSig):
		return mapResult{kind: resultUnknown}
	}

	return mapResult{kind: resultStreamData, dur: opusPacketDuration(pkt)}
}

func (m *opusMapper) makeParser() (durationParser, bool) {
	return func(pkt []byte) uint64 {
		if bytes.HasPrefix(pkt, opusHeadSig) || bytes.HasPrefix(pkt, opusTagsSig) {
			return 0
		}
		return opusPacketDuration(pkt)
	}, true
}

// opusPacketDuration reads the frame count and size from the TOC byte.
// Malformed packets have no duration.
func opusPacketDuration(pkt []byte) uint64 {
	if len(pkt) == 0 {
		return 0
	}

	toc := pkt[0]
	cfg := toc >> 3

	var size uint64
	switch {
	case cfg < 12:
		size = opusSilkFrames[cfg%4]
	case cfg < 16:
		size = opusHybridFrames[cfg%2]
	default:
		size = opusCeltFrames[cfg%4]
	}

	var count uint64
	switch toc & 3 {
	case 0:
		count = 1
	case 1, 2:
		count = 2
	case 3:
		if len(pkt) < 2 {
			return 0
		}
		count = uint64(pkt[1] & 0x3f)
	}

	dur := size * count
	if dur > opusMaxPacketFrames {
		return 0
	}
	return dur
}
