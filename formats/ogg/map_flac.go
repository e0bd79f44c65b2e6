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
	// flacMappingLen is the mapping header, the native signature and the
	// STREAMINFO block header.
	flacMappingLen  = 13
	flacStreamInfo  = 34
	flacFirstPktLen = flacMappingLen + 4 + flacStreamInfo

	flacBlockStreamInfo    = 0
	flacBlockVorbisComment = 4
)

var (
	flacMappingSig = []byte("\x7fFLAC")
	flacNativeSig  = []byte("fLaC")
)

type flacMapper struct {
	baseMapper

	// headers is the number of metadata packets still expected, or -1 when
	// the stream does not say.
	headers int
}

func detectFLAC(pkt []byte) (mapper, bool) {
	if len(pkt) < flacFirstPktLen || !bytes.HasPrefix(pkt, flacMappingSig) {
		return nil, false
	}

	// Mapping version 1.x.
	if pkt[5] != 1 {
		return nil, false
	}

	numHeaders := int(binary.BigEndian.Uint16(pkt[7:]))
	if !bytes.Equal(pkt[9:13], flacNativeSig) {
		return nil, false
	}

	if pkt[13]&0x7f != flacBlockStreamInfo {
		return nil, false
	}
	if blockLen := int(pkt[14])<<16 | int(pkt[15])<<8 | int(pkt[16]); blockLen != flacStreamInfo {
		return nil, false
	}

	info := pkt[17 : 17+flacStreamInfo]

	rate := uint32(info[10])<<12 | uint32(info[11])<<4 | uint32(info[12])>>4
	if rate == 0 {
		return nil, false
	}
	channels := int(info[12]>>1&0x07) + 1
	bps := uint32(info[12]&0x01)<<4 | uint32(info[13])>>4 + 1
	total := uint64(info[13]&0x0f)<<32 | uint64(binary.BigEndian.Uint32(info[14:]))

	m := &flacMapper{headers: -1}
	if numHeaders > 0 {
		m.headers = numHeaders
	}

	m.params = media.CodecParameters{
		Codec:               media.CodecFLAC,
		SampleRate:          rate,
		TimeBase:            media.NewTimeBase(1, rate),
		NFrames:             total,
		SampleFormat:        media.SampleFormatS32,
		BitsPerSample:       bps,
		Channels:            audio.ChannelsFromCount(channels),
		MaxFramesPerPacket:  uint64(binary.BigEndian.Uint16(info[2:])),
		PacketDataIntegrity: true,
		ExtraData:           slices.Clone(info),
	}

	return m, true
}

func (m *flacMapper) name() string { return "flac" }

func (m *flacMapper) isReady() bool { return m.headers <= 0 }

func isFLACFrame(pkt []byte) bool {
	return len(pkt) >= 4 && pkt[0] == 0xff && pkt[1]&0xfc == 0xf8
}

func (m *flacMapper) mapPacket(pkt []byte) mapResult {
	if isFLACFrame(pkt) {
		m.headers = 0
		return mapResult{kind: resultStreamData, dur: flacFrameDuration(pkt)}
	}

	if len(pkt) < 4 || m.headers == 0 || bytes.HasPrefix(pkt, flacMappingSig) {
		return mapResult{kind: resultUnknown}
	}
	if m.headers > 0 {
		m.headers--
	}

	if pkt[0]&0x7f != flacBlockVorbisComment {
		return mapResult{kind: resultSetup}
	}

	var b media.MetadataBuilder
	if err := vorbis.ReadComment(stream.NewBufReader(pkt[4:]), &b); err != nil {
		return mapResult{kind: resultError, err: err}
	}
	return mapResult{kind: resultSideData, metadata: b.Metadata()}
}

func (m *flacMapper) makeParser() (durationParser, bool) {
	return flacFrameDuration, true
}

// flacFrameDuration decodes the block size of a frame header.
func flacFrameDuration(pkt []byte) uint64 {
	if !isFLACFrame(pkt) {
		return 0
	}

	code := pkt[2] >> 4

	switch {
	case code == 1:
		return 192
	case code >= 2 && code <= 5:
		return 576 << (code - 2)
	case code >= 8:
		return 256 << (code - 8)
	case code == 6 || code == 7:
	default:
		return 0
	}

	// The block size follows the UTF-8 coded frame or sample number.
	off := 4 + utf8CodedLen(pkt[4:])
	if off == 4 {
		return 0
	}

	if code == 6 {
		if len(pkt) <= off {
			return 0
		}
		return uint64(pkt[off]) + 1
	}

	if len(pkt) < off+2 {
		return 0
	}
	return uint64(binary.BigEndian.Uint16(pkt[off:])) + 1
}

// utf8CodedLen is the length of the extended UTF-8 number at the start of
// buf, or zero if it is malformed.
func utf8CodedLen(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}

	lead := buf[0]

	var n int
	switch {
	case lead&0x80 == 0:
		n = 1
	case lead&0xe0 == 0xc0:
		n = 2
	case lead&0xf0 == 0xe0:
		n = 3
	case lead&0xf8 == 0xf0:
		n = 4
	case lead&0xfc == 0xf8:
		n = 5
	case lead&0xfe == 0xfc:
		n = 6
	case lead == 0xfe:
		n = 7
	default:
		return 0
	}

	if len(buf) < n {
		return 0
	}
	return n
}
